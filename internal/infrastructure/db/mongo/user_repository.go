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

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

const (
	collectionPassengers = "passengers"
	collectionDrivers    = "drivers"
)

// userDocument is the stored shape: the public user inlined next to the
// Mongo id and the password hash.
type userDocument[T any] struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	User     T                  `bson:",inline"`
	Password string             `bson:"password,omitempty"`
}

type decoder interface {
	Decode(v interface{}) error
}

// UserRepository implements ports.UserRepository for one role partition.
type UserRepository struct {
	role domain.Role
	col  *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewPassengerRepository returns the repository backed by the passengers collection.
func NewPassengerRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{role: domain.RolePassenger, col: db.Collection(collectionPassengers)}
}

// NewDriverRepository returns the repository backed by the drivers collection.
func NewDriverRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{role: domain.RoleDriver, col: db.Collection(collectionDrivers)}
}

func (r *UserRepository) Role() domain.Role { return r.role }

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID treats ids that are not valid ObjectIDs as unknown.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.UserRecord, error) {
	res := r.col.FindOne(ctx, filter)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("find "+string(r.role), err)
	}
	return r.decode(res)
}

// Insert relies on the unique email index to reject duplicates atomically.
func (r *UserRepository) Insert(ctx context.Context, rec *domain.UserRecord) (string, error) {
	if rec == nil || rec.User.Role() != r.role {
		return "", fmt.Errorf("%w: record does not belong to %s partition", domain.ErrStore, r.role)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc interface{}
	switch r.role {
	case domain.RolePassenger:
		doc = userDocument[domain.Passenger]{User: *rec.User.Passenger, Password: rec.PasswordHash}
	case domain.RoleDriver:
		doc = userDocument[domain.Driver]{User: *rec.User.Driver, Password: rec.PasswordHash}
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrDuplicateEmail
		}
		return "", storeError("insert "+string(r.role), err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected inserted id type %T", domain.ErrStore, res.InsertedID)
	}
	return oid.Hex(), nil
}

// Update applies patch with $set and returns the document after the write.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.UserRecord, error) {
	if patch.Role() != r.role {
		return nil, fmt.Errorf("%w: %s patch applied to %s partition", domain.ErrStore, patch.Role(), r.role)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch.Fields()}, opts)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("update "+string(r.role), err)
	}
	return r.decode(res)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, storeError("delete "+string(r.role), err)
	}
	return res.DeletedCount > 0, nil
}

// List returns every record in the partition in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeError("list "+string(r.role), err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.UserRecord, 0)
	for cur.Next(ctx) {
		rec, err := r.decode(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, storeError("list "+string(r.role), err)
	}
	return out, nil
}

// EnsureIndexes creates the unique email index that enforces one account per
// email within the partition.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure %s indexes: %w", r.col.Name(), err)
	}
	return nil
}

func (r *UserRepository) decode(src decoder) (*domain.UserRecord, error) {
	var (
		rec *domain.UserRecord
		oid primitive.ObjectID
	)

	switch r.role {
	case domain.RolePassenger:
		var doc userDocument[domain.Passenger]
		if err := src.Decode(&doc); err != nil {
			return nil, storeError("decode passenger", err)
		}
		oid = doc.ID
		rec = &domain.UserRecord{User: domain.PassengerUser(&doc.User), PasswordHash: doc.Password}
	case domain.RoleDriver:
		var doc userDocument[domain.Driver]
		if err := src.Decode(&doc); err != nil {
			return nil, storeError("decode driver", err)
		}
		oid = doc.ID
		rec = &domain.UserRecord{User: domain.DriverUser(&doc.User), PasswordHash: doc.Password}
	default:
		return nil, fmt.Errorf("%w: unknown partition %q", domain.ErrStore, r.role)
	}

	if err := rec.Reassert(r.role, oid.Hex()); err != nil {
		return nil, storeError("decode "+string(r.role), err)
	}
	return rec, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStore, op, err)
}
