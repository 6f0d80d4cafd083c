package service

import (
	"context"
	"testing"
	"time"

	"dropskills/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequests() []model.ProductRequest {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mk := func(id, title, status, priority string, votes, day int) model.ProductRequest {
		r := model.ProductRequest{Title: title, Status: status, Priority: priority, VotesCount: votes, UserEmail: id + "@client.fr"}
		r.ID = id
		r.CreatedAt = base.AddDate(0, 0, day)
		return r
	}
	return []model.ProductRequest{
		mk("a", "Formation TikTok Ads", model.StatusPending, model.PriorityLow, 3, 0),
		mk("b", "Template Notion CRM", model.StatusCompleted, model.PriorityHigh, 10, 1),
		mk("c", "Ebook copywriting", model.StatusCompleted, model.PriorityMedium, 1, 2),
	}
}

func ids(reqs []model.ProductRequest) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.ID
	}
	return out
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(sampleRequests())
	assert.Equal(t, model.ProductRequestStats{Total: 3, Pending: 1, Completed: 2, TotalVotes: 14}, st)
	assert.Equal(t, model.ProductRequestStats{}, ComputeStats(nil))
}

func TestFilterRequests(t *testing.T) {
	reqs := sampleRequests()

	assert.Equal(t, []string{"b", "c"}, ids(FilterRequests(reqs, RequestFilter{Status: model.StatusCompleted})))
	assert.Len(t, FilterRequests(reqs, RequestFilter{Status: "all"}), 3)
	assert.Equal(t, []string{"b"}, ids(FilterRequests(reqs, RequestFilter{Priority: model.PriorityHigh})))
	assert.Equal(t, []string{"b"}, ids(FilterRequests(reqs, RequestFilter{Search: "NOTION"})))
	assert.Equal(t, []string{"c"}, ids(FilterRequests(reqs, RequestFilter{Search: "c@client"})))
	assert.Empty(t, FilterRequests(reqs, RequestFilter{Search: "podcast"}))
	assert.Empty(t, FilterRequests(reqs, RequestFilter{Status: model.StatusPending, Search: "notion"}))
}

func TestSortRequests(t *testing.T) {
	tests := []struct {
		by   string
		want []string
	}{
		{"", []string{"c", "b", "a"}},
		{"newest", []string{"c", "b", "a"}},
		{"oldest", []string{"a", "b", "c"}},
		{"votes", []string{"b", "a", "c"}},
		{"priority", []string{"b", "c", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.by, func(t *testing.T) {
			reqs := sampleRequests()
			SortRequests(reqs, tt.by)
			assert.Equal(t, tt.want, ids(reqs))
		})
	}
}

func TestProductRequestLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewProductRequestService(db)

	_, err := svc.Create(ctx, "u1", "u1@client.fr", model.NewProductRequest{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	r, err := svc.Create(ctx, "u1", "u1@client.fr", model.NewProductRequest{Title: " Pack Canva ", Description: "Des visuels"})
	require.NoError(t, err)
	assert.Equal(t, "Pack Canva", r.Title)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, model.PriorityMedium, r.Priority)

	voted, err := svc.Vote(ctx, r.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, voted.VotesCount)

	_, err = svc.Vote(ctx, r.ID, "u2")
	assert.ErrorIs(t, err, ErrConflict)
	voted, err = svc.Vote(ctx, r.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, 2, voted.VotesCount)

	_, err = svc.Vote(ctx, "missing", "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	bad := "done"
	_, err = svc.Update(ctx, r.ID, model.ProductRequestUpdate{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(ctx, r.ID, model.ProductRequestUpdate{Priority: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	status, notes := model.StatusInProgress, "Prévu pour avril"
	eta := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	up, err := svc.Update(ctx, r.ID, model.ProductRequestUpdate{Status: &status, AdminNotes: &notes, EstimatedCompletion: &eta})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, up.Status)
	assert.Equal(t, notes, up.AdminNotes)
	require.NotNil(t, up.EstimatedCompletion)
	assert.True(t, eta.Equal(*up.EstimatedCompletion))
	assert.Equal(t, 2, up.VotesCount)

	list, stats, err := svc.List(ctx, RequestFilter{Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 2, stats.TotalVotes)

	require.NoError(t, svc.Delete(ctx, r.ID))
	assert.ErrorIs(t, svc.Delete(ctx, r.ID), ErrNotFound)
	var votes int64
	require.NoError(t, db.Model(&model.ProductRequestVote{}).Count(&votes).Error)
	assert.Zero(t, votes)
}
