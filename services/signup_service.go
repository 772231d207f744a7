package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/marcelmiro/starkeys/models"
	"github.com/marcelmiro/starkeys/utils"
	"github.com/marcelmiro/starkeys/workspace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken = errors.New("email is already in use")
	ErrInternal   = errors.New("an unexpected error occurred")
)

type FileUploader interface {
	UploadResume(ctx context.Context, data []byte, fileName, contentType string) (string, error)
}

type Mailer interface {
	SendSubmissionEmail(ctx context.Context, toEmail, firstName, referralURL string) error
}

type Recorder interface {
	RecordApplication(ctx context.Context, app workspace.Application) error
}

// SignupService orchestrates a submission: verify the supplied referral code,
// mint a code for the new user, persist the row, then fan out to email and
// the workspace. A fan-out failure rolls the row back.
type SignupService struct {
	DB        *gorm.DB
	Files     FileUploader
	Mail      Mailer
	Workspace Recorder

	BaseURL      string
	CodeLength   int
	MaxReferrals int
}

type SubmitInput struct {
	ReferralCode string
	Name         string
	Email        string
	Phone        string
	SocialURLs   string
	Roles        []string

	// Either ResumeURL (already uploaded by the client) or ResumeData plus
	// its file name and content type. Never both.
	ResumeURL         string
	ResumeData        []byte
	ResumeFileName    string
	ResumeContentType string
}

// Submit runs the signup workflow. It returns ErrCodeNotFound,
// ErrQuotaExceeded, ErrEmailTaken, or ErrInternal; provider failure detail
// stays in the server logs.
func (s *SignupService) Submit(ctx context.Context, input SubmitInput) error {
	// The code generation and the re-verification are independent, so they
	// overlap purely to cut latency.
	var newCode string
	var g errgroup.Group
	g.Go(func() error {
		code, err := utils.GenerateUniqueReferralCode(s.DB, s.CodeLength)
		newCode = code
		return err
	})
	g.Go(func() error {
		_, err := VerifyReferralCode(s.DB, input.ReferralCode, s.MaxReferrals)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrCodeNotFound) || errors.Is(err, ErrQuotaExceeded) {
			return err
		}
		log.Printf("🔥 Signup pre-check failed: %v", err)
		return ErrInternal
	}

	// The row must never point at a file that does not exist yet, so a
	// byte-supplied résumé is uploaded before anything is persisted.
	resumeURL := input.ResumeURL
	if resumeURL == "" {
		url, err := s.Files.UploadResume(ctx, input.ResumeData, input.ResumeFileName, input.ResumeContentType)
		if err != nil {
			log.Printf("🔥 Resume upload failed for %s: %v", input.Email, err)
			return ErrInternal
		}
		resumeURL = url
	}

	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		referrer, err := verifyReferralCode(tx, input.ReferralCode, s.MaxReferrals, true)
		if err != nil {
			return err
		}

		user = models.User{
			Email:        input.Email,
			ReferralCode: newCode,
			ReferrerID:   &referrer.ID,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrEmailTaken
		case errors.Is(err, ErrCodeNotFound), errors.Is(err, ErrQuotaExceeded):
			return err
		default:
			log.Printf("🔥 Failed to create user %s: %v", input.Email, err)
			return ErrInternal
		}
	}

	referralURL := s.BaseURL + "?code=" + newCode
	firstName := strings.SplitN(input.Name, " ", 2)[0]

	// Both outbound calls run together and are jointly awaited; Wait blocks
	// until each goroutine has returned even when one of them errors.
	fanout, fanoutCtx := errgroup.WithContext(ctx)
	fanout.Go(func() error {
		return s.Mail.SendSubmissionEmail(fanoutCtx, input.Email, firstName, referralURL)
	})
	fanout.Go(func() error {
		return s.Workspace.RecordApplication(fanoutCtx, workspace.Application{
			Name:       input.Name,
			Email:      input.Email,
			Phone:      input.Phone,
			SocialURLs: input.SocialURLs,
			Roles:      input.Roles,
			ResumeURL:  resumeURL,
		})
	})
	if err := fanout.Wait(); err != nil {
		log.Printf("🔥 Submission fan-out failed for %s: %v", input.Email, err)
		s.compensate(user)
		return ErrInternal
	}

	return nil
}

// compensate deletes the row created by Submit after a fan-out failure.
// Best-effort: a failed delete is logged and queued for the cleanup job, but
// never surfaced, since that would mask the original error.
func (s *SignupService) compensate(user models.User) {
	err := s.DB.Where("id = ?", user.ID).Delete(&models.User{}).Error
	if err == nil {
		return
	}

	log.Printf("🔥 Compensation delete failed for %s: %v", user.Email, err)

	task := models.CleanupTask{
		UserID:    user.ID,
		Email:     user.Email,
		LastError: err.Error(),
	}
	if err := s.DB.Create(&task).Error; err != nil {
		log.Printf("🔥 Failed to queue cleanup task for %s: %v", user.Email, err)
	}
}
