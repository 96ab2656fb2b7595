package email

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email_1"}, nil
}

func newTestClient(s sender) *Client {
	logger := zerolog.Nop()
	return &Client{sender: s, from: "LearnHub <test@example.com>", appURL: "https://learnhub.test", logger: &logger}
}

func TestRenderPreviewData(t *testing.T) {
	for name, data := range PreviewData {
		t.Run(string(name), func(t *testing.T) {
			html, err := Render(name, data)
			require.NoError(t, err)
			for _, v := range data {
				assert.Contains(t, html, v)
			}
		})
	}
}

func TestRenderMissingKey(t *testing.T) {
	_, err := Render(TemplateCertificate, map[string]string{"UserName": "Ada"})
	assert.Error(t, err)
}

func TestRenderEscapesHTML(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"UserName": "<script>", "AppURL": "https://x.test"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestSendCertificateEmail(t *testing.T) {
	fake := &fakeSender{}
	c := newTestClient(fake)

	err := c.SendCertificateEmail(context.Background(), "ada@example.com", "Ada", "Go 101", "LH-20240301-00000001")
	require.NoError(t, err)

	require.Len(t, fake.sent, 1)
	req := fake.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, req.To)
	assert.Equal(t, "LearnHub <test@example.com>", req.From)
	assert.Equal(t, "Your certificate for Go 101", req.Subject)
	assert.Contains(t, req.Html, "LH-20240301-00000001")
	assert.Contains(t, req.Html, "https://learnhub.test/certificates")
}

func TestSendEmailProviderError(t *testing.T) {
	c := newTestClient(&fakeSender{err: errors.New("boom")})

	err := c.SendWelcomeEmail(context.Background(), "ada@example.com", "Ada")
	assert.ErrorContains(t, err, "failed to send email")
}

func TestSendEmailWithoutProvider(t *testing.T) {
	c := newTestClient(nil)
	assert.NoError(t, c.SendEnrollmentEmail(context.Background(), "ada@example.com", "Ada", "Go 101", "go-101"))
}
