package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/marcelmiro/starkeys/database"
	"github.com/marcelmiro/starkeys/services"
	ws "github.com/marcelmiro/starkeys/websocket"
)

var validate = validator.New()

// Verification results barely ever change, so the CDN may cache them for a
// month. Submission re-verifies server-side regardless.
const verifyCacheSeconds = 60 * 60 * 24 * 31

type ApplicationHandler struct {
	Signup *services.SignupService
}

func NewApplicationHandler(signup *services.SignupService) *ApplicationHandler {
	return &ApplicationHandler{Signup: signup}
}

// VerifyReferralCode gates the landing page: it tells the client whether the
// code in the invite link is real and still under quota.
func (h *ApplicationHandler) VerifyReferralCode(c *fiber.Ctx) error {
	code := c.Query("code")
	if len(code) < 3 || len(code) > 20 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid referral code"})
	}

	_, err := services.VerifyReferralCode(database.DB, code, h.Signup.MaxReferrals)
	if err != nil {
		return referralErrorResponse(c, err)
	}

	c.Set("Cache-Control", fmt.Sprintf("s-maxage=%d, stale-while-revalidate", verifyCacheSeconds))
	return c.JSON(fiber.Map{"valid": true})
}

type SubmitRequest struct {
	ReferralCode string   `json:"referral_code" validate:"required,min=3,max=20"`
	Name         string   `json:"name" validate:"required,min=3,max=200"`
	Email        string   `json:"email" validate:"required,email"`
	Phone        string   `json:"phone" validate:"required,min=3,max=50"`
	SocialURLs   string   `json:"social_urls" validate:"required,min=5,max=500"`
	Roles        []string `json:"roles" validate:"required,min=1,max=3,dive,min=3,max=32"`

	// A résumé arrives either as the URL of a file the client already
	// uploaded, or as base64 bytes for the server to upload.
	ResumeURL         string `json:"resume_url" validate:"omitempty,url"`
	ResumeData        string `json:"resume_data"`
	ResumeFileName    string `json:"resume_file_name"`
	ResumeContentType string `json:"resume_content_type"`
}

func (h *ApplicationHandler) SubmitApplication(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": submitErrorMessage(fieldErrors[0])})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	input := services.SubmitInput{
		ReferralCode: req.ReferralCode,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		SocialURLs:   req.SocialURLs,
		Roles:        req.Roles,
		ResumeURL:    req.ResumeURL,
	}

	if req.ResumeURL == "" {
		if req.ResumeData == "" {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "Unexpected error with CV/Resume - Please try to add the file again"})
		}
		if !strings.HasSuffix(strings.ToLower(req.ResumeFileName), ".pdf") {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "CV/Resume must be a PDF file"})
		}
		data, err := base64.StdEncoding.DecodeString(req.ResumeData)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "Unexpected error with CV/Resume - Please try to add the file again"})
		}
		input.ResumeData = data
		input.ResumeFileName = req.ResumeFileName
		input.ResumeContentType = req.ResumeContentType
	}

	if err := h.Signup.Submit(c.UserContext(), input); err != nil {
		return referralErrorResponse(c, err)
	}

	ws.Publish(ws.SubmissionEvent{
		Name:         req.Name,
		Email:        req.Email,
		Roles:        req.Roles,
		ReferralCode: req.ReferralCode,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// referralErrorResponse maps workflow errors onto the public taxonomy.
// Anything unclassified is already logged server-side and leaves as the
// generic retry-later message.
func referralErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Referral code not found"})
	case errors.Is(err, services.ErrQuotaExceeded):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Referral code has expired"})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already in use"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "An unexpected error occurred - Please try again later"})
	}
}

// submitErrorMessage keeps the user-facing copy of the original form for each
// field-level failure.
func submitErrorMessage(err validator.FieldError) string {
	field := err.StructField()

	if strings.HasPrefix(field, "Roles") {
		if strings.Contains(field, "[") {
			switch err.Tag() {
			case "min":
				return "Roles must be at least 3 characters long"
			case "max":
				return "Roles cannot exceed 32 characters"
			}
		}
		switch err.Tag() {
		case "min":
			return "You must select at least 1 role"
		case "max":
			return "You can only select up to 3 roles"
		case "required":
			return "You must select at least 1 role"
		}
	}

	switch field {
	case "ReferralCode":
		return "Invalid referral code"
	case "Name":
		switch err.Tag() {
		case "max":
			return "Full name cannot exceed 200 characters"
		default:
			return "Full name must be at least 3 characters long"
		}
	case "Email":
		return "Invalid email"
	case "Phone":
		switch err.Tag() {
		case "max":
			return "Phone cannot exceed 50 characters"
		default:
			return "Phone must be at least 3 characters long"
		}
	case "SocialURLs":
		switch err.Tag() {
		case "max":
			return "Social URLs cannot exceed 500 characters"
		default:
			return "Social URLs must be at least 5 characters long"
		}
	case "ResumeURL":
		return "Unexpected error with CV/Resume - Please try to add the file again"
	}

	return err.Error()
}
