package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"projecthub/logging"
	"projecthub/models"
	"projecthub/realtime"
	"projecthub/utils"
)

// Sentinel errors the handler maps onto the structured HTTP error codes.
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrEmailTaken         = errors.New("a member with that email already exists")
	ErrSelfRemoval        = errors.New("cannot remove your own account")
	ErrSelfRoleChange     = errors.New("cannot change your own role")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleNotFound       = errors.New("role not found")
)

// MemberService owns the three records behind one person: the membership
// row, the role binding, and the auth identity.
type MemberService struct {
	membersCollection *mongo.Collection
	usersCollection   *mongo.Collection
	rolesCollection   *mongo.Collection
	assignments       *AssignmentService
	emailBreaker      *gobreaker.CircuitBreaker
	hub               *realtime.Hub
}

func NewMemberService(
	membersCollection, usersCollection, rolesCollection *mongo.Collection,
	assignments *AssignmentService,
	emailBreaker *gobreaker.CircuitBreaker,
	hub *realtime.Hub,
) *MemberService {
	return &MemberService{
		membersCollection: membersCollection,
		usersCollection:   usersCollection,
		rolesCollection:   rolesCollection,
		assignments:       assignments,
		emailBreaker:      emailBreaker,
		hub:               hub,
	}
}

// ProvisionMember creates the membership row, the auth identity with a
// generated initial password, and the role binding, then mails the password.
// Mail delivery is best effort behind the circuit breaker; a down relay does
// not fail provisioning.
func (s *MemberService) ProvisionMember(ctx context.Context, name, email string, role models.Role) (*models.TeamMember, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("member name and email are required")
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	name = html.EscapeString(name)
	email = html.EscapeString(email)

	count, err := s.membersCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing members: %v", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	initialPassword := utils.GenerateRandomPassword()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  string(hashedPassword),
		CreatedAt: time.Now(),
	}
	if _, err := s.usersCollection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create auth identity: %v", err)
	}

	member := models.TeamMember{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID.Hex(),
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    models.MemberInvited,
		CreatedAt: time.Now(),
	}
	if _, err := s.membersCollection.InsertOne(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create membership row: %v", err)
	}

	binding := models.RoleBinding{
		ID:     primitive.NewObjectID(),
		UserID: user.ID.Hex(),
		Role:   role,
	}
	if _, err := s.rolesCollection.InsertOne(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to create role binding: %v", err)
	}

	subject := "You have been invited to ProjectHub"
	body := fmt.Sprintf("Hello %s,<br>Your account has been created. Sign in with this initial password: <b>%s</b>", name, initialPassword)
	if _, err := s.emailBreaker.Execute(func() (interface{}, error) {
		return nil, utils.SendEmail(email, subject, body)
	}); err != nil {
		logging.Logger.Warnf("Event ID: INVITE_MAIL_FAILED, Description: Invitation mail to %s not delivered: %v", email, err)
	}

	s.hub.Invalidate("team_members", member.ID.Hex(), "")
	return &member, nil
}

// selfRemoval reports whether the targeted membership row belongs to the
// caller. Checked before any row is deleted.
func selfRemoval(member *models.TeamMember, callerEmail string) bool {
	return member.Email == callerEmail
}

// RemoveMember deletes the membership row, the role binding, and the auth
// identity. Removing yourself is refused before anything is touched.
func (s *MemberService) RemoveMember(ctx context.Context, memberID, callerEmail string) error {
	objectID, err := primitiveObjectID(memberID)
	if err != nil {
		return err
	}

	var member models.TeamMember
	if err := s.membersCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrMemberNotFound
		}
		return err
	}
	if selfRemoval(&member, callerEmail) {
		return ErrSelfRemoval
	}

	if _, err := s.membersCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete membership row: %v", err)
	}
	if member.UserID != "" {
		if _, err := s.rolesCollection.DeleteMany(ctx, bson.M{"userId": member.UserID}); err != nil {
			return fmt.Errorf("failed to delete role binding: %v", err)
		}
		userObjectID, err := primitive.ObjectIDFromHex(member.UserID)
		if err == nil {
			if _, err := s.usersCollection.DeleteOne(ctx, bson.M{"_id": userObjectID}); err != nil {
				return fmt.Errorf("failed to delete auth identity: %v", err)
			}
		}
		if err := s.assignments.RemoveUserFromAllTasks(ctx, member.UserID); err != nil {
			logging.Logger.Warnf("Event ID: MEMBER_ASSIGNMENT_CLEANUP_FAILED, Description: Assignment cleanup for %s failed: %v", member.Email, err)
		}
	}

	s.hub.Invalidate("team_members", memberID, "")
	return nil
}

// Login verifies credentials and issues a token carrying the user's role.
// First login flips an invited membership to active.
func (s *MemberService) Login(ctx context.Context, email, password string) (string, *models.TeamMember, error) {
	var user models.User
	if err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	role, err := s.GetRole(ctx, user.ID.Hex())
	if err != nil {
		return "", nil, err
	}

	var member models.TeamMember
	if err := s.membersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&member); err != nil {
		return "", nil, ErrMemberNotFound
	}
	if member.Status == models.MemberInvited {
		update := bson.M{"$set": bson.M{"status": models.MemberActive}}
		if _, err := s.membersCollection.UpdateOne(ctx, bson.M{"_id": member.ID}, update); err != nil {
			logging.Logger.Warnf("Event ID: MEMBER_ACTIVATE_FAILED, Description: Could not activate member %s: %v", email, err)
		} else {
			member.Status = models.MemberActive
			s.hub.Invalidate("team_members", member.ID.Hex(), "")
		}
	}

	token, err := utils.GenerateToken(email, string(role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}
	return token, &member, nil
}

// GetRole resolves the user's role binding. Returns ErrRoleNotFound once the
// member has been removed.
func (s *MemberService) GetRole(ctx context.Context, userID string) (models.Role, error) {
	var binding models.RoleBinding
	if err := s.rolesCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&binding); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrRoleNotFound
		}
		return "", err
	}
	return binding.Role, nil
}

func (s *MemberService) ListMembers(ctx context.Context) ([]models.TeamMember, error) {
	cursor, err := s.membersCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve members: %v", err)
	}
	defer cursor.Close(ctx)

	var members []models.TeamMember
	for cursor.Next(ctx) {
		var member models.TeamMember
		if err := cursor.Decode(&member); err != nil {
			return nil, fmt.Errorf("failed to decode member: %v", err)
		}
		members = append(members, member)
	}
	return members, cursor.Err()
}

func (s *MemberService) GetMemberByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := s.membersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ChangeRole updates another member's role; self-service role changes are
// refused.
func (s *MemberService) ChangeRole(ctx context.Context, memberID string, role models.Role, callerEmail string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role: %s", role)
	}
	objectID, err := primitiveObjectID(memberID)
	if err != nil {
		return err
	}

	var member models.TeamMember
	if err := s.membersCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrMemberNotFound
		}
		return err
	}
	if member.Email == callerEmail {
		return ErrSelfRoleChange
	}

	if _, err := s.membersCollection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"role": role}}); err != nil {
		return fmt.Errorf("failed to update member role: %v", err)
	}
	if member.UserID != "" {
		if _, err := s.rolesCollection.UpdateOne(ctx, bson.M{"userId": member.UserID}, bson.M{"$set": bson.M{"role": role}}); err != nil {
			return fmt.Errorf("failed to update role binding: %v", err)
		}
	}

	s.hub.Invalidate("team_members", memberID, "")
	return nil
}

// UpdateAvatar sets the caller's own avatar URL.
func (s *MemberService) UpdateAvatar(ctx context.Context, email, avatarURL string) error {
	result, err := s.membersCollection.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"avatarUrl": avatarURL}})
	if err != nil {
		return fmt.Errorf("failed to update avatar: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrMemberNotFound
	}
	s.hub.Invalidate("team_members", "", "")
	return nil
}

// ChangePassword verifies the old password before storing the new hash.
func (s *MemberService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var user models.User
	if err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	if _, err := s.usersCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"password": string(hashedPassword)}}); err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	return nil
}
