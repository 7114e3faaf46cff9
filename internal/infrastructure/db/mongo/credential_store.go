package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

const (
	collectionUsers     = "users"
	collectionRoles     = "roles"
	collectionUserRoles = "user_roles"
)

// CredentialStore implements ports.CredentialStore over three collections:
// users, roles and user_roles. Unique indexes on the normalised email and on
// (user_id, role_name) back the service-level checks.
type CredentialStore struct {
	users     *mongo.Collection
	roles     *mongo.Collection
	userRoles *mongo.Collection
	hashCost  int
}

var (
	_ ports.CredentialStore = (*CredentialStore)(nil)
	_ ports.RoleProvisioner = (*CredentialStore)(nil)
)

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{
		users:     db.Collection(collectionUsers),
		roles:     db.Collection(collectionRoles),
		userRoles: db.Collection(collectionUserRoles),
		hashCost:  bcrypt.DefaultCost,
	}
}

type mongoUser struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Email           string             `bson:"email"`
	NormalizedEmail string             `bson:"normalized_email"`
	UserName        string             `bson:"user_name"`
	FirstName       string             `bson:"first_name,omitempty"`
	LastName        string             `bson:"last_name,omitempty"`
	PasswordHash    string             `bson:"password_hash"`
	CreatedAt       int64              `bson:"created_at"`
	UpdatedAt       int64              `bson:"updated_at"`
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Email:        mu.Email,
		UserName:     mu.UserName,
		FirstName:    mu.FirstName,
		LastName:     mu.LastName,
		PasswordHash: mu.PasswordHash,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

type mongoRole struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

type mongoUserRole struct {
	UserID   string `bson:"user_id"`
	RoleName string `bson:"role_name"`
}

// EnsureIndexes creates the uniqueness constraints the store relies on.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.roles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("roles index: %w", err)
	}
	if _, err := s.userRoles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("user_roles index: %w", err)
	}
	return nil
}

func (s *CredentialStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *CredentialStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"normalized_email": domain.NormalizeEmail(email)})
}

func (s *CredentialStore) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := s.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (s *CredentialStore) CreateUser(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.Reject("password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	doc := mongoUser{
		ID:              primitive.NewObjectID(),
		Email:           user.Email,
		NormalizedEmail: domain.NormalizeEmail(user.Email),
		UserName:        user.UserName,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		PasswordHash:    string(hash),
		CreatedAt:       now.Unix(),
		UpdatedAt:       now.Unix(),
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Reject(domain.MsgEmailExists)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteUser removes the user and any memberships it holds.
func (s *CredentialStore) DeleteUser(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	if _, err := s.userRoles.DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	return nil
}

func (s *CredentialStore) CheckPassword(_ context.Context, user *domain.User, password string) (bool, error) {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

func (s *CredentialStore) FindRoleByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}
	return s.findRole(ctx, bson.M{"_id": oid})
}

func (s *CredentialStore) findRole(ctx context.Context, filter bson.M) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	if err := s.roles.FindOne(ctx, filter).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: mr.ID.Hex(), Name: mr.Name}, nil
}

func (s *CredentialStore) RolesForUser(ctx context.Context, user *domain.User) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "role_name", Value: 1}})
	cur, err := s.userRoles.Find(ctx, bson.M{"user_id": user.ID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find memberships: %w", err)
	}
	var rows []mongoUserRole
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.RoleName)
	}
	return names, nil
}

func (s *CredentialStore) IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := s.userRoles.CountDocuments(ctx, bson.M{"user_id": user.ID, "role_name": roleName})
	if err != nil {
		return false, fmt.Errorf("count memberships: %w", err)
	}
	return n > 0, nil
}

func (s *CredentialStore) AddToRole(ctx context.Context, user *domain.User, roleName string) error {
	if _, err := s.findRole(ctx, bson.M{"name": roleName}); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return domain.Reject("role " + roleName + " does not exist")
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.userRoles.InsertOne(ctx, mongoUserRole{UserID: user.ID, RoleName: roleName})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Reject("user is already in role " + roleName)
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *CredentialStore) RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.userRoles.DeleteOne(ctx, bson.M{"user_id": user.ID, "role_name": roleName})
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.Reject("user is not in role " + roleName)
	}
	return nil
}

// EnsureRoles upserts each role by name so concurrent starts converge on a
// single document per role.
func (s *CredentialStore) EnsureRoles(ctx context.Context, names ...string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, name := range names {
		_, err := s.roles.UpdateOne(ctx,
			bson.M{"name": name},
			bson.M{"$setOnInsert": bson.M{"name": name}},
			options.Update().SetUpsert(true),
		)
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
