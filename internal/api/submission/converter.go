package submission

import "github.com/formloom/forms-backend/internal/entity"

// toSubmissionDTO converts Submission entity to SubmissionDTO
func toSubmissionDTO(s *entity.Submission) *entity.SubmissionDTO {
	return &entity.SubmissionDTO{
		ID:          s.ID,
		Values:      s.Values,
		SubmittedAt: s.SubmittedAt,
	}
}
