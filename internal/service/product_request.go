package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dropskills/internal/model"

	"gorm.io/gorm"
)

// RequestFilter holds the query of the product request list.
type RequestFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Sort     string `form:"sort"`
}

// FilterRequests keeps the requests matching every non-empty criterion.
// Search is a case-insensitive substring match on title, description and
// submitter email; "all" disables the status and priority filters.
func FilterRequests(reqs []model.ProductRequest, f RequestFilter) []model.ProductRequest {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.ProductRequest, 0, len(reqs))
	for _, r := range reqs {
		if f.Status != "" && f.Status != "all" && r.Status != f.Status {
			continue
		}
		if f.Priority != "" && f.Priority != "all" && r.Priority != f.Priority {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) &&
			!strings.Contains(strings.ToLower(r.UserEmail), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

var priorityRank = map[string]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

// SortRequests orders reqs in place. Unknown keys sort newest first.
func SortRequests(reqs []model.ProductRequest, by string) {
	var less func(a, b model.ProductRequest) bool
	switch by {
	case "oldest":
		less = func(a, b model.ProductRequest) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "votes":
		less = func(a, b model.ProductRequest) bool {
			if a.VotesCount != b.VotesCount {
				return a.VotesCount > b.VotesCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	case "priority":
		less = func(a, b model.ProductRequest) bool {
			ra, rb := rank(a.Priority), rank(b.Priority)
			if ra != rb {
				return ra < rb
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	default:
		less = func(a, b model.ProductRequest) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(reqs, func(i, j int) bool { return less(reqs[i], reqs[j]) })
}

func rank(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

func ComputeStats(reqs []model.ProductRequest) model.ProductRequestStats {
	st := model.ProductRequestStats{Total: len(reqs)}
	for _, r := range reqs {
		switch r.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusInProgress:
			st.InProgress++
		case model.StatusCompleted:
			st.Completed++
		case model.StatusRejected:
			st.Rejected++
		}
		st.TotalVotes += r.VotesCount
	}
	return st
}

type ProductRequestService struct {
	db *gorm.DB
}

func NewProductRequestService(db *gorm.DB) *ProductRequestService {
	return &ProductRequestService{db: db}
}

// List returns the filtered, sorted requests and the stats of the whole set.
func (s *ProductRequestService) List(ctx context.Context, f RequestFilter) ([]model.ProductRequest, model.ProductRequestStats, error) {
	var all []model.ProductRequest
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, model.ProductRequestStats{}, fmt.Errorf("list requests: %w", err)
	}
	stats := ComputeStats(all)
	out := FilterRequests(all, f)
	SortRequests(out, f.Sort)
	return out, stats, nil
}

func (s *ProductRequestService) Get(ctx context.Context, id string) (*model.ProductRequest, error) {
	var r model.ProductRequest
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &r, nil
}

func (s *ProductRequestService) Create(ctx context.Context, userID, email string, in model.NewProductRequest) (*model.ProductRequest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title", ErrInvalidInput)
	}
	r := &model.ProductRequest{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
		UserID:      userID,
		UserEmail:   email,
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return r, nil
}

// Vote records one vote of userID on request id.
func (s *ProductRequestService) Vote(ctx context.Context, id, userID string) (*model.ProductRequest, error) {
	var out model.ProductRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var n int64
		if err := tx.Model(&model.ProductRequestVote{}).
			Where("request_id = ? AND user_id = ?", id, userID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("vote: %w", ErrConflict)
		}
		if err := tx.Create(&model.ProductRequestVote{RequestID: id, UserID: userID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("vote: %w", ErrConflict)
			}
			return err
		}
		if err := tx.Model(&out).UpdateColumn("votes_count", gorm.Expr("votes_count + 1")).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProductRequestService) Update(ctx context.Context, id string, upd model.ProductRequestUpdate) (*model.ProductRequest, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if upd.Status != nil {
		if !model.ValidStatus(*upd.Status) {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, *upd.Status)
		}
		changes["status"] = *upd.Status
	}
	if upd.Priority != nil {
		if !model.ValidPriority(*upd.Priority) {
			return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, *upd.Priority)
		}
		changes["priority"] = *upd.Priority
	}
	if upd.AdminNotes != nil {
		changes["admin_notes"] = *upd.AdminNotes
	}
	if upd.EstimatedCompletion != nil {
		changes["estimated_completion"] = *upd.EstimatedCompletion
	}
	if len(changes) == 0 {
		return r, nil
	}
	if err := s.db.WithContext(ctx).Model(r).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ProductRequestService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.ProductRequest{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&model.ProductRequestVote{}, "request_id = ?", id).Error
	})
}
