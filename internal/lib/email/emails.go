package email

import "context"

// SendWelcomeEmail greets a user whose profile was just created.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, userName string) error {
	return c.SendEmail(ctx, to, "Welcome to LearnHub!", TemplateWelcome, map[string]string{
		"UserName": userName,
	})
}

// SendEnrollmentEmail confirms an enrollment.
func (c *Client) SendEnrollmentEmail(ctx context.Context, to, userName, courseTitle, courseSlug string) error {
	return c.SendEmail(ctx, to, "You're enrolled in "+courseTitle, TemplateEnrollment, map[string]string{
		"UserName":    userName,
		"CourseTitle": courseTitle,
		"CourseSlug":  courseSlug,
	})
}

// SendCertificateEmail announces a newly issued certificate.
func (c *Client) SendCertificateEmail(ctx context.Context, to, userName, courseTitle, certificateNumber string) error {
	return c.SendEmail(ctx, to, "Your certificate for "+courseTitle, TemplateCertificate, map[string]string{
		"UserName":          userName,
		"CourseTitle":       courseTitle,
		"CertificateNumber": certificateNumber,
	})
}
