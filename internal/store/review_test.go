// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"heritagepk/internal/models"
)

func TestReviewVoteHelpfulOncePerUser(t *testing.T) {
	db := testDB(t)
	rs := NewReviewStore(db)
	ctx := context.Background()

	author := uuid.MustParse(testUser(t, db, "review-author@example.com"))
	voter := uuid.MustParse(testUser(t, db, "review-voter@example.com"))
	site := uuid.MustParse(testSite(t, db, "vote-test-site"))

	review, err := rs.Create(ctx, &models.Review{
		SiteID:   site,
		AuthorID: author,
		Rating:   4,
		Body:     "Worth the trip.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if review.HelpfulVotes != 0 {
		t.Errorf("new review votes: got %d, want 0", review.HelpfulVotes)
	}

	if err := rs.VoteHelpful(ctx, review.ID, voter); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	err = rs.VoteHelpful(ctx, review.ID, voter)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("second vote: got %v, want ErrAlreadyVoted", err)
	}

	fresh, err := rs.FindByID(ctx, review.ID)
	if err != nil || fresh == nil {
		t.Fatalf("FindByID: review=%v err=%v", fresh, err)
	}
	if fresh.HelpfulVotes != 1 {
		t.Errorf("votes after double attempt: got %d, want 1", fresh.HelpfulVotes)
	}
}

func TestReviewListBySiteOrdersByHelpfulness(t *testing.T) {
	db := testDB(t)
	rs := NewReviewStore(db)
	ctx := context.Background()

	a := uuid.MustParse(testUser(t, db, "list-author-a@example.com"))
	b := uuid.MustParse(testUser(t, db, "list-author-b@example.com"))
	voter := uuid.MustParse(testUser(t, db, "list-voter@example.com"))
	site := uuid.MustParse(testSite(t, db, "list-test-site"))

	first, err := rs.Create(ctx, &models.Review{SiteID: site, AuthorID: a, Rating: 3, Body: "Fine"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := rs.Create(ctx, &models.Review{SiteID: site, AuthorID: b, Rating: 5, Body: "Great"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Make the older review the most helpful one.
	if err := rs.VoteHelpful(ctx, first.ID, voter); err != nil {
		t.Fatalf("vote: %v", err)
	}

	list, err := rs.ListBySite(ctx, site)
	if err != nil {
		t.Fatalf("ListBySite: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d reviews, want 2", len(list))
	}
	if list[0].ID != first.ID {
		t.Errorf("most helpful should sort first; got %s", list[0].ID)
	}
	if list[0].AuthorName == "" {
		t.Error("expected joined author display name")
	}
	_ = second
}

func TestReviewCountByAuthor(t *testing.T) {
	db := testDB(t)
	rs := NewReviewStore(db)
	ctx := context.Background()

	author := uuid.MustParse(testUser(t, db, "count-author@example.com"))
	site := uuid.MustParse(testSite(t, db, "count-test-site"))

	for i := 0; i < 3; i++ {
		site2 := uuid.MustParse(testSite(t, db, "count-test-site-"+uuid.NewString()[:8]))
		if i == 0 {
			site2 = site
		}
		if _, err := rs.Create(ctx, &models.Review{SiteID: site2, AuthorID: author, Rating: 4, Body: "ok"}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	count, err := rs.CountByAuthor(ctx, author)
	if err != nil {
		t.Fatalf("CountByAuthor: %v", err)
	}
	if count != 3 {
		t.Errorf("got %d, want 3", count)
	}
}
