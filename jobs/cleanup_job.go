package jobs

import (
	"log"

	"github.com/marcelmiro/starkeys/database"
	"github.com/marcelmiro/starkeys/models"
)

// ProcessCleanupTasks retries compensation deletes that failed during a
// submission. The rows are harmless orphans until then; none of this is ever
// visible to the applicant.
func ProcessCleanupTasks() {
	log.Println("Running job: ProcessCleanupTasks...")

	var tasks []models.CleanupTask
	err := database.DB.Order("created_at").Limit(50).Find(&tasks).Error
	if err != nil {
		log.Printf("Error fetching cleanup tasks: %v", err)
		return
	}

	if len(tasks) == 0 {
		return
	}

	for _, task := range tasks {
		err := database.DB.Where("id = ?", task.UserID).Delete(&models.User{}).Error
		if err != nil {
			log.Printf("Cleanup delete failed for user %s: %v", task.Email, err)
			database.DB.Model(&task).Updates(map[string]interface{}{
				"attempts":   task.Attempts + 1,
				"last_error": err.Error(),
			})
			continue
		}

		if err := database.DB.Delete(&task).Error; err != nil {
			log.Printf("Error removing cleanup task for user %s: %v", task.Email, err)
			continue
		}

		log.Printf("✅ Cleaned up orphaned user row for %s", task.Email)
	}
}
