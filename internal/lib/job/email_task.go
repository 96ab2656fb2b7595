package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names stored in Redis; asynq routes on them.
const (
	TaskWelcome     = "email:welcome"
	TaskEnrollment  = "email:enrollment"
	TaskCertificate = "email:certificate"
)

// WelcomeEmailPayload is sent once, when a profile is created.
type WelcomeEmailPayload struct {
	To       string `json:"to"`
	UserName string `json:"user_name"`
}

// EnrollmentEmailPayload confirms a new enrollment. CourseSlug builds the link
// back to the course page.
type EnrollmentEmailPayload struct {
	To          string `json:"to"`
	UserName    string `json:"user_name"`
	CourseTitle string `json:"course_title"`
	CourseSlug  string `json:"course_slug"`
}

// CertificateEmailPayload announces a certificate when an enrollment reaches 100%.
type CertificateEmailPayload struct {
	To                string `json:"to"`
	UserName          string `json:"user_name"`
	CourseTitle       string `json:"course_title"`
	CertificateNumber string `json:"certificate_number"`
}

func newEmailTask(taskType string, payload any, queue string) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		taskType,
		data,
		asynq.MaxRetry(3),
		asynq.Queue(queue),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewWelcomeEmailTask builds the welcome email task on the default queue.
func NewWelcomeEmailTask(to, userName string) (*asynq.Task, error) {
	return newEmailTask(TaskWelcome, WelcomeEmailPayload{To: to, UserName: userName}, QueueDefault)
}

// NewEnrollmentEmailTask builds the enrollment confirmation task on the default queue.
func NewEnrollmentEmailTask(p EnrollmentEmailPayload) (*asynq.Task, error) {
	return newEmailTask(TaskEnrollment, p, QueueDefault)
}

// NewCertificateEmailTask goes to the critical queue; the certificate is
// what the learner waits for.
func NewCertificateEmailTask(p CertificateEmailPayload) (*asynq.Task, error) {
	return newEmailTask(TaskCertificate, p, QueueCritical)
}
