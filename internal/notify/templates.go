package notify

import (
	"bytes"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

const (
	otpSubject   = "Verify your email"
	resetSubject = "Reset your password"
)

var (
	otpText = texttemplate.Must(texttemplate.New("otp.txt").Parse(
		`Hi {{.Name}},

Your verification code is {{.Code}}.
It expires in {{.Minutes}} minutes. If you did not create an account, ignore this email.
`))
	otpHTML = htmltemplate.Must(htmltemplate.New("otp.html").Parse(
		`<p>Hi {{.Name}},</p>
<p>Your verification code is <strong style="font-size:20px;letter-spacing:4px">{{.Code}}</strong>.</p>
<p>It expires in {{.Minutes}} minutes. If you did not create an account, ignore this email.</p>
`))
	resetText = texttemplate.Must(texttemplate.New("reset.txt").Parse(
		`Hi {{.Name}},

We received a request to reset your password. Open the link below to choose a new one:
{{.Link}}

The link expires in {{.Minutes}} minutes. If you did not ask for this, ignore this email.
`))
	resetHTML = htmltemplate.Must(htmltemplate.New("reset.html").Parse(
		`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link expires in {{.Minutes}} minutes. If you did not ask for this, ignore this email.</p>
`))
)

type templateData struct {
	Name    string
	Code    string
	Link    string
	Minutes int
}

// OTPMessage builds the verification email carrying code.
func OTPMessage(to, name, code string, ttl time.Duration) (Message, error) {
	data := templateData{Name: name, Code: code, Minutes: minutes(ttl)}
	text, html, err := render(otpText, otpHTML, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: otpSubject, Text: text, HTML: html, Kind: KindOTP, Code: code}, nil
}

// ResetMessage builds the password reset email. The token is appended to baseURL as ?token=.
func ResetMessage(to, name, baseURL, token string, ttl time.Duration) (Message, error) {
	link, err := ResetLink(baseURL, token)
	if err != nil {
		return Message{}, err
	}
	data := templateData{Name: name, Link: link, Minutes: minutes(ttl)}
	text, html, err := render(resetText, resetHTML, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: resetSubject, Text: text, HTML: html, Kind: KindReset}, nil
}

// ResetLink returns baseURL with the token query parameter set.
func ResetLink(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func render(t *texttemplate.Template, h *htmltemplate.Template, data templateData) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := t.Execute(&tb, data); err != nil {
		return "", "", err
	}
	if err := h.Execute(&hb, data); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}

func minutes(d time.Duration) int {
	m := int(d.Round(time.Minute) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
