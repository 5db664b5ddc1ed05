package services

import (
	"errors"
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/authz"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewService handles review CRUD and like/dislike interactions.
type ReviewService struct {
	db     *gorm.DB
	movies MovieResolver
}

func NewReviewService(db *gorm.DB, movies MovieResolver) *ReviewService {
	return &ReviewService{db: db, movies: movies}
}

func (s *ReviewService) Create(actor authz.Actor, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 10 {
		return nil, apperr.Invalid("rating must be between 1 and 10")
	}
	if len(req.Content) > 5000 {
		return nil, apperr.Invalid("review must be under 5000 characters")
	}

	if _, err := s.movies.Ensure(req.MovieID); err != nil {
		return nil, err
	}

	review := models.Review{
		ID:      uuid.New(),
		UserID:  actor.ID,
		MovieID: req.MovieID,
		Rating:  req.Rating,
		Content: strings.TrimSpace(req.Content),
	}
	if err := s.db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("you have already reviewed this movie")
		}
		return nil, apperr.Internal("failed to create review", err)
	}
	return s.toResponse(&review)
}

func (s *ReviewService) Update(reviewID uuid.UUID, actor authz.Actor, req *dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		return nil, apperr.NotFound("review not found")
	}
	if review.UserID != actor.ID {
		return nil, apperr.Forbidden("you can only edit your own reviews")
	}

	updates := map[string]interface{}{}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 10 {
			return nil, apperr.Invalid("rating must be between 1 and 10")
		}
		updates["rating"] = *req.Rating
	}
	if req.Content != nil {
		if len(*req.Content) > 5000 {
			return nil, apperr.Invalid("review must be under 5000 characters")
		}
		updates["content"] = strings.TrimSpace(*req.Content)
	}
	if len(updates) == 0 {
		return nil, apperr.Invalid("nothing to update")
	}

	if err := s.db.Model(&review).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed to update review", err)
	}
	return s.toResponse(&review)
}

func (s *ReviewService) Delete(reviewID uuid.UUID, actor authz.Actor) error {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		return apperr.NotFound("review not found")
	}
	if review.UserID != actor.ID && !actor.Admin {
		return apperr.Forbidden("you can only delete your own reviews")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewReaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&review).Error
	})
	if err != nil {
		return apperr.Internal("failed to delete review", err)
	}
	return nil
}

func (s *ReviewService) ListByMovie(movieID int) ([]dto.ReviewResponse, error) {
	var reviews []models.Review
	err := s.db.Preload("User").
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal("failed to list reviews", err)
	}
	return s.toResponses(reviews), nil
}

func (s *ReviewService) ListByUser(userID uuid.UUID) ([]dto.ReviewResponse, error) {
	var reviews []models.Review
	err := s.db.Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal("failed to list reviews", err)
	}
	return s.toResponses(reviews), nil
}

// React toggles a like/dislike: repeating a reaction removes it, sending the
// opposite one switches it. The denormalized counts move in the same
// transaction as the reaction row.
func (s *ReviewService) React(reviewID uuid.UUID, actor authz.Actor, reaction string) (*dto.ReviewResponse, error) {
	if reaction != models.ReactionLike && reaction != models.ReactionDislike {
		return nil, apperr.Invalid("reaction must be like or dislike")
	}

	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		return nil, apperr.NotFound("review not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ReviewReaction
		err := tx.First(&existing, "review_id = ? AND user_id = ?", reviewID, actor.ID).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.ReviewReaction{
				ID:       uuid.New(),
				ReviewID: reviewID,
				UserID:   actor.ID,
				Reaction: reaction,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			return tx.Model(&review).
				Update(countColumn(reaction), gorm.Expr(countColumn(reaction)+" + 1")).Error

		case err != nil:
			return err

		case existing.Reaction == reaction:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&review).
				Update(countColumn(reaction), gorm.Expr(countColumn(reaction)+" - 1")).Error

		default:
			if err := tx.Model(&existing).Update("reaction", reaction).Error; err != nil {
				return err
			}
			if err := tx.Model(&review).
				Update(countColumn(existing.Reaction), gorm.Expr(countColumn(existing.Reaction)+" - 1")).Error; err != nil {
				return err
			}
			return tx.Model(&review).
				Update(countColumn(reaction), gorm.Expr(countColumn(reaction)+" + 1")).Error
		}
	})
	if err != nil {
		return nil, apperr.Internal("failed to record reaction", err)
	}

	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		return nil, apperr.Internal("failed to reload review", err)
	}
	return s.toResponse(&review)
}

func countColumn(reaction string) string {
	if reaction == models.ReactionLike {
		return "like_count"
	}
	return "dislike_count"
}

func (s *ReviewService) toResponse(review *models.Review) (*dto.ReviewResponse, error) {
	username := review.User.Username
	if username == "" {
		var user models.User
		if err := s.db.First(&user, "id = ?", review.UserID).Error; err == nil {
			username = user.Username
		}
	}
	return &dto.ReviewResponse{
		ID:           review.ID,
		UserID:       review.UserID,
		Username:     username,
		MovieID:      review.MovieID,
		Rating:       review.Rating,
		Content:      review.Content,
		LikeCount:    review.LikeCount,
		DislikeCount: review.DislikeCount,
		CreatedAt:    review.CreatedAt,
		UpdatedAt:    review.UpdatedAt,
	}, nil
}

func (s *ReviewService) toResponses(reviews []models.Review) []dto.ReviewResponse {
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		resp, err := s.toResponse(&reviews[i])
		if err != nil {
			continue
		}
		out = append(out, *resp)
	}
	return out
}
