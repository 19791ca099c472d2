// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"heritagepk/internal/models"
)

func TestPhotoCreateAppendsToPortfolio(t *testing.T) {
	db := testDB(t)
	ps := NewPhotoStore(db)
	ctx := context.Background()

	owner := uuid.MustParse(testUser(t, db, "photo-append@example.com"))

	var created []*models.Photo
	for i := 0; i < 3; i++ {
		p, err := ps.Create(ctx, &models.Photo{
			OwnerID: owner,
			S3Key:   owner.String() + "/photos/" + uuid.NewString() + ".webp",
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if p.OrderIndex != i {
			t.Errorf("photo %d: order index %d, want %d", i, p.OrderIndex, i)
		}
		created = append(created, p)
	}
	_ = created
}

func TestPhotoReorder(t *testing.T) {
	db := testDB(t)
	ps := NewPhotoStore(db)
	ctx := context.Background()

	owner := uuid.MustParse(testUser(t, db, "photo-reorder@example.com"))

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		p, err := ps.Create(ctx, &models.Photo{
			OwnerID: owner,
			S3Key:   owner.String() + "/photos/" + uuid.NewString() + ".webp",
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, p.ID)
	}

	// Reverse the display order.
	err := ps.Reorder(ctx, owner, []OrderUpdate{
		{PhotoID: ids[0], OrderIndex: 2},
		{PhotoID: ids[1], OrderIndex: 1},
		{PhotoID: ids[2], OrderIndex: 0},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	list, err := ps.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d photos, want 3", len(list))
	}
	want := []uuid.UUID{ids[2], ids[1], ids[0]}
	for i, p := range list {
		if p.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.ID, want[i])
		}
	}
}

func TestPhotoReorderIgnoresOtherOwners(t *testing.T) {
	db := testDB(t)
	ps := NewPhotoStore(db)
	ctx := context.Background()

	owner := uuid.MustParse(testUser(t, db, "photo-owner@example.com"))
	intruder := uuid.MustParse(testUser(t, db, "photo-intruder@example.com"))

	p, err := ps.Create(ctx, &models.Photo{
		OwnerID: owner,
		S3Key:   owner.String() + "/photos/" + uuid.NewString() + ".webp",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another user's reorder request must not touch the row.
	err = ps.Reorder(ctx, intruder, []OrderUpdate{{PhotoID: p.ID, OrderIndex: 99}})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	fresh, err := ps.FindByID(ctx, p.ID)
	if err != nil || fresh == nil {
		t.Fatalf("FindByID: photo=%v err=%v", fresh, err)
	}
	if fresh.OrderIndex != 0 {
		t.Errorf("order index changed by non-owner: got %d, want 0", fresh.OrderIndex)
	}
}

func TestPhotoDeleteRequiresOwnership(t *testing.T) {
	db := testDB(t)
	ps := NewPhotoStore(db)
	ctx := context.Background()

	owner := uuid.MustParse(testUser(t, db, "photo-del-owner@example.com"))
	intruder := uuid.MustParse(testUser(t, db, "photo-del-intruder@example.com"))

	p, err := ps.Create(ctx, &models.Photo{
		OwnerID: owner,
		S3Key:   owner.String() + "/photos/" + uuid.NewString() + ".webp",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	gone, err := ps.Delete(ctx, p.ID, intruder)
	if err != nil {
		t.Fatalf("Delete as intruder: %v", err)
	}
	if gone != nil {
		t.Error("non-owner delete should return nil")
	}

	gone, err = ps.Delete(ctx, p.ID, owner)
	if err != nil {
		t.Fatalf("Delete as owner: %v", err)
	}
	if gone == nil {
		t.Fatal("owner delete should return the row")
	}
	if gone.S3Key != p.S3Key {
		t.Errorf("returned key %q, want %q", gone.S3Key, p.S3Key)
	}
}
