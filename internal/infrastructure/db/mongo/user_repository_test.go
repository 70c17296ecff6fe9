package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/switchserver/identity/internal/core/domain"
)

func TestUserDocument_Shape(t *testing.T) {
	now := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	doc := userDocument[domain.Passenger]{
		User: domain.Passenger{
			Account:   domain.Account{ID: "ignored", Email: "a@b.com", Role: domain.RolePassenger, CreatedAt: now, UpdatedAt: now},
			FirstName: "John",
			IsActive:  true,
		},
		Password: "hash",
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"email", "role", "firstName", "createdAt", "password", "emergencyContact"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("expected key %q in stored document: %v", key, m)
		}
	}
	for _, key := range []string{"_id", "id", "ID", "gender", "dateOfBirth"} {
		if _, ok := m[key]; ok {
			t.Fatalf("unexpected key %q in stored document", key)
		}
	}
}

type rawDecoder []byte

func (r rawDecoder) Decode(v interface{}) error { return bson.Unmarshal(r, v) }

func TestUserRepository_Decode(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":         oid,
		"email":       "d@e.com",
		"role":        "driver",
		"firstName":   "Ada",
		"password":    "hash",
		"rating":      4.5,
		"isAvailable": true,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	r := &UserRepository{role: domain.RoleDriver}
	rec, err := r.decode(rawDecoder(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.User.Role() != domain.RoleDriver || rec.User.ID() != oid.Hex() {
		t.Fatalf("unexpected user: %+v", rec.User)
	}
	if rec.PasswordHash != "hash" || rec.User.Driver.Rating != 4.5 || !rec.User.Driver.IsAvailable {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestUserRepository_Decode_ForcesPartitionRole(t *testing.T) {
	raw, _ := bson.Marshal(bson.M{"_id": primitive.NewObjectID(), "email": "a@b.com", "role": "driver"})

	r := &UserRepository{role: domain.RolePassenger}
	rec, err := r.decode(rawDecoder(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.User.Passenger.Role != domain.RolePassenger {
		t.Fatalf("expected role to follow the partition, got %s", rec.User.Passenger.Role)
	}
}

func TestUserRepository_InvalidID(t *testing.T) {
	r := &UserRepository{role: domain.RolePassenger}
	ctx := context.Background()

	if _, err := r.FindByID(ctx, "not-an-object-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Update(ctx, "not-an-object-id", &domain.PassengerUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if deleted, err := r.Delete(ctx, "not-an-object-id"); err != nil || deleted {
		t.Fatalf("expected no deletion, got %v %v", deleted, err)
	}
	if _, err := r.Update(ctx, primitive.NewObjectID().Hex(), &domain.DriverUpdate{}); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore for foreign patch, got %v", err)
	}
}
