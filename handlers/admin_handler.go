package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/marcelmiro/starkeys/database"
	"github.com/marcelmiro/starkeys/models"
)

type applicantRow struct {
	models.User
	ReferreeCount int64 `json:"referree_count"`
}

type applicantResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	ReferralCode       string    `json:"referral_code"`
	ReferrerID         string    `json:"referrer_id,omitempty"`
	UnlimitedReferrals bool      `json:"unlimited_referrals"`
	ReferreeCount      int64     `json:"referree_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// ListApplicants returns every user with a derived referree count, newest
// first. The count is computed in the query, never cached on the row.
func ListApplicants(c *fiber.Ctx) error {
	var rows []applicantRow
	err := database.DB.Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM users AS r WHERE r.referrer_id = users.id) AS referree_count").
		Order("created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch applicants"})
	}

	applicants := make([]applicantResponse, 0, len(rows))
	for _, row := range rows {
		applicant := applicantResponse{
			ID:                 row.ID.String(),
			Email:              row.Email,
			ReferralCode:       row.ReferralCode,
			UnlimitedReferrals: row.UnlimitedReferrals,
			ReferreeCount:      row.ReferreeCount,
			CreatedAt:          row.CreatedAt,
		}
		if row.ReferrerID != nil {
			applicant.ReferrerID = row.ReferrerID.String()
		}
		applicants = append(applicants, applicant)
	}

	return c.JSON(fiber.Map{"applicants": applicants})
}

type setUnlimitedRequest struct {
	Unlimited bool `json:"unlimited"`
}

// SetUnlimitedReferrals toggles a user's unlimited-referrals flag, lifting or
// restoring the quota on their code.
func SetUnlimitedReferrals(c *fiber.Ctx) error {
	var req setUnlimitedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	result := database.DB.Model(&models.User{}).
		Where("id = ?", c.Params("id")).
		Update("unlimited_referrals", req.Unlimited)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
