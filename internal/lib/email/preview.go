package email

// PreviewData contains sample template data for local preview/testing.
//
//	PreviewData[TemplateWelcome]["UserName"] == "Ada Lovelace"
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserName": "Ada Lovelace",
		"AppURL":   "http://localhost:5173",
	},
	TemplateEnrollment: {
		"UserName":    "Ada Lovelace",
		"CourseTitle": "Go for Backend Developers",
		"CourseSlug":  "go-for-backend-developers",
		"AppURL":      "http://localhost:5173",
	},
	TemplateCertificate: {
		"UserName":          "Ada Lovelace",
		"CourseTitle":       "Go for Backend Developers",
		"CertificateNumber": "LH-20240301-1A2B3C4D",
		"AppURL":            "http://localhost:5173",
	},
}
