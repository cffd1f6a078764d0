package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/cors"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"projecthub/config"
	"projecthub/handlers"
	"projecthub/logging"
	"projecthub/middleware"
	"projecthub/realtime"
	"projecthub/repositories"
	"projecthub/services"
	"projecthub/storage"
)

func createMemberEmailIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on member email: %v", err)
	}
	return nil
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting ProjectHub service...")

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	db := client.Database(cfg.MongoDBName)
	projectsCollection := db.Collection("projects")
	linksCollection := db.Collection("project_links")
	tabsCollection := db.Collection("project_tabs")
	tasksCollection := db.Collection("tasks")
	assigneesCollection := db.Collection("task_assignees")
	reportersCollection := db.Collection("task_reporters")
	membersCollection := db.Collection("team_members")
	usersCollection := db.Collection("users")
	rolesCollection := db.Collection("roles")
	historyCollection := db.Collection("work_history")
	announcementsCollection := db.Collection("announcements")
	commentsCollection := db.Collection("announcement_comments")
	reactionsCollection := db.Collection("announcement_reactions")
	filesCollection := db.Collection("files")
	foldersCollection := db.Collection("folders")

	if err := createMemberEmailIndex(membersCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	chatRepo, err := repositories.NewChatRepo(cfg.CassDB, logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_INIT_FAILED, Description: Failed to initialize chat repository: %v", err)
	}
	defer chatRepo.CloseSession()
	chatRepo.CreateTable()

	notificationRepo, err := repositories.NewNotificationRepo(cfg.CassDB, logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_INIT_FAILED, Description: Failed to initialize notification repository: %v", err)
	}
	defer notificationRepo.CloseSession()
	notificationRepo.CreateTable()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		logging.Logger.Fatalf("Event ID: NEO4J_INIT_FAILED, Description: Failed to create Neo4j driver: %v", err)
	}
	defer driver.Close(context.Background())

	hub := realtime.NewHub()
	go hub.Run()

	emailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	store := storage.NewDiskStore(cfg.UploadDir)

	assignmentService := services.NewAssignmentService(client, assigneesCollection, reportersCollection, tasksCollection, membersCollection, notificationRepo, hub)
	taskService := services.NewTaskService(tasksCollection, projectsCollection, assignmentService, hub)
	fileService := services.NewFileService(filesCollection, foldersCollection, store, hub)
	projectService := services.NewProjectService(projectsCollection, linksCollection, tabsCollection, taskService, fileService, chatRepo, hub)
	memberService := services.NewMemberService(membersCollection, usersCollection, rolesCollection, assignmentService, emailBreaker, hub)
	workHistoryService := services.NewWorkHistoryService(historyCollection, hub)
	announcementService := services.NewAnnouncementService(announcementsCollection, commentsCollection, reactionsCollection, hub)
	workflowService := services.NewWorkflowService(driver, tasksCollection, hub)

	memberHandler := handlers.NewMemberHandler(memberService)
	taskHandler := handlers.NewTaskHandler(taskService, assignmentService, memberService)
	projectHandler := handlers.NewProjectHandler(projectService, taskService)
	workHistoryHandler := handlers.NewWorkHistoryHandler(workHistoryService, memberService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService, memberService)
	chatHandler := handlers.NewChatHandler(chatRepo, memberService, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	fileHandler := handlers.NewFileHandler(fileService, memberService)
	wsHandler := handlers.NewWSHandler(hub)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)

	r := mux.NewRouter()

	// Unauthenticated surface: login, the change feed (token in query), and
	// the public object URLs.
	r.HandleFunc("/api/login", memberHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/ws", wsHandler.ServeWS)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ProjectHub service is running"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	// Projects
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}", projectHandler.GetProjectByID).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}", projectHandler.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{projectID}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectID}/has-unfinished", projectHandler.HasUnfinishedTasksHandler).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}/links", projectHandler.AddLink).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/links", projectHandler.ListLinks).Methods(http.MethodGet)
	api.HandleFunc("/projects/links/{linkID}", projectHandler.DeleteLink).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectID}/tabs", projectHandler.AddTab).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/tabs", projectHandler.ListTabs).Methods(http.MethodGet)
	api.HandleFunc("/projects/tabs/{tabID}", projectHandler.DeleteTab).Methods(http.MethodDelete)

	// Tasks and assignments
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/all", taskHandler.GetAllTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/status", taskHandler.ChangeTaskStatus).Methods(http.MethodPost)
	api.HandleFunc("/tasks/available-members", taskHandler.GetAvailableMembers).Methods(http.MethodGet)
	api.HandleFunc("/tasks/project/{projectID}", taskHandler.GetTasksByProjectID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/project/{projectID}/assignments", taskHandler.GetProjectAssignments).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskHandler.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/start", taskHandler.StartTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/assignees", taskHandler.ReplaceAssignees).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}/assignees", taskHandler.GetAssigneesForTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}/reporters", taskHandler.ReplaceReporters).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}/reporters", taskHandler.GetReportersForTask).Methods(http.MethodGet)

	// Team members
	api.HandleFunc("/members", memberHandler.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/provision", memberHandler.ProvisionMember).Methods(http.MethodPost)
	api.HandleFunc("/members/{memberID}", memberHandler.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/members/{memberID}/role", memberHandler.ChangeRole).Methods(http.MethodPut)
	api.HandleFunc("/profile", memberHandler.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile/password", memberHandler.ChangePassword).Methods(http.MethodPut)

	// Work history
	api.HandleFunc("/work-history", workHistoryHandler.AddEntry).Methods(http.MethodPost)
	api.HandleFunc("/work-history", workHistoryHandler.GetEntries).Methods(http.MethodGet)
	api.HandleFunc("/work-history/{entryID}", workHistoryHandler.EditEntry).Methods(http.MethodPut)
	api.HandleFunc("/work-history/{entryID}", workHistoryHandler.DeleteEntry).Methods(http.MethodDelete)

	// Announcements
	api.HandleFunc("/announcements", announcementHandler.CreateAnnouncement).Methods(http.MethodPost)
	api.HandleFunc("/announcements", announcementHandler.ListAnnouncements).Methods(http.MethodGet)
	api.HandleFunc("/announcements/{announcementID}", announcementHandler.UpdateAnnouncement).Methods(http.MethodPut)
	api.HandleFunc("/announcements/{announcementID}", announcementHandler.DeleteAnnouncement).Methods(http.MethodDelete)
	api.HandleFunc("/announcements/{announcementID}/comments", announcementHandler.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/announcements/{announcementID}/comments", announcementHandler.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/announcements/comments/{commentID}", announcementHandler.DeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/announcements/{announcementID}/reactions", announcementHandler.ToggleReaction).Methods(http.MethodPost)
	api.HandleFunc("/announcements/{announcementID}/reactions", announcementHandler.ListReactions).Methods(http.MethodGet)

	// Chat
	api.HandleFunc("/chat/{projectID}/messages", chatHandler.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/chat/{projectID}/messages", chatHandler.GetMessages).Methods(http.MethodGet)

	// Notifications
	api.HandleFunc("/notifications/add", notificationHandler.CreateNotification).Methods(http.MethodPost)
	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read", notificationHandler.MarkAsRead).Methods(http.MethodPut)
	api.HandleFunc("/notifications/delete", notificationHandler.DeleteNotification).Methods(http.MethodDelete)

	// Files and folders
	api.HandleFunc("/projects/{projectID}/files", fileHandler.UploadFile).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/files", fileHandler.ListFiles).Methods(http.MethodGet)
	api.HandleFunc("/files/{fileID}", fileHandler.DeleteFile).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectID}/folders", fileHandler.CreateFolder).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/folders", fileHandler.ListFolders).Methods(http.MethodGet)
	api.HandleFunc("/folders/{folderID}", fileHandler.DeleteFolder).Methods(http.MethodDelete)
	api.HandleFunc("/objects", fileHandler.UploadObject).Methods(http.MethodPost)

	// Workflow
	api.HandleFunc("/workflow/task-node", workflowHandler.EnsureTaskNode).Methods(http.MethodPost)
	api.HandleFunc("/workflow/dependency", workflowHandler.AddDependency).Methods(http.MethodPost)
	api.HandleFunc("/workflow/dependencies/{taskID}", workflowHandler.GetDependencies).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Role", "User-Email"},
	}).Handler(r)

	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
