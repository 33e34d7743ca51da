package templates

import (
	"fmt"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}
func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }

// WithExpiresAt records the absolute expiry and the remaining lifetime relative to from.
func WithExpiresAt(from, exp time.Time) Option {
	return func(d *EmailData) {
		d.ExpiresAt = exp.UTC()
		d.ExpiresInText = humanMinutes(exp.Sub(from))
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		d.ExpiresAt = time.Now().Add(dur).UTC()
		d.ExpiresInText = humanMinutes(dur)
	}
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// NewBaseEmailData fills the common fields, then applies opts.
func NewBaseEmailData(appName, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:    name,
		Email:   email,
		Type:    typ,
		AppName: appName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewResetPasswordData(appName, name, email, resetURL string, opts ...Option) EmailData {
	opts = append([]Option{WithResetURL(resetURL)}, opts...)
	return NewBaseEmailData(appName, ResetPassword, name, email, opts...)
}
