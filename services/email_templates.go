package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"flappion-backend/models"
)

// html/template escapes every interpolated field for its HTML context.
var (
	operatorEmailTmpl = template.Must(template.New("operator").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #9333ea, #3b82f6); padding: 20px; border-radius: 10px 10px 0 0;">
    <h1 style="color: white; margin: 0; text-align: center;">New Booking Request</h1>
  </div>
  <div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px;">
    <h2 style="color: #333; border-bottom: 2px solid #9333ea; padding-bottom: 10px;">Customer Details</h2>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 10px 0; font-weight: bold; color: #666;">Name:</td><td style="padding: 10px 0; color: #333;">{{.Name}}</td></tr>
      <tr><td style="padding: 10px 0; font-weight: bold; color: #666;">Email:</td><td style="padding: 10px 0; color: #333;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
      <tr><td style="padding: 10px 0; font-weight: bold; color: #666;">Phone:</td><td style="padding: 10px 0; color: #333;"><a href="tel:{{.Phone}}">{{.Phone}}</a></td></tr>
      <tr><td style="padding: 10px 0; font-weight: bold; color: #666;">Event Type:</td><td style="padding: 10px 0; color: #333;">{{.EventType}}</td></tr>
      <tr><td style="padding: 10px 0; font-weight: bold; color: #666;">Preferred Contact Time:</td><td style="padding: 10px 0; color: #333;">{{.PreferredTime}}</td></tr>
    </table>
    {{if .Message}}<h3 style="color: #333; margin-top: 20px;">Additional Message:</h3>
    <p style="background: white; padding: 15px; border-radius: 5px; border-left: 4px solid #9333ea; color: #555;">{{.Message}}</p>{{end}}
    <p style="margin-top: 30px; padding: 15px; background: #e8f4f8; border-radius: 5px; text-align: center; color: #666;">
      <strong>Booking ID:</strong> {{.ID}}<br><small>This booking has been saved to your database</small>
    </p>
  </div>
</div>`))

	customerEmailTmpl = template.Must(template.New("customer").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #9333ea, #3b82f6); padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">
    <h1 style="color: white; margin: 0; font-size: 28px;">Thank You, {{.Name}}!</h1>
    <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0;">Your booking request has been received</p>
  </div>
  <div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px;">
    <p style="color: #333; font-size: 16px; line-height: 1.6;">We're thrilled to receive your booking request for our Bionic Butterfly Drone experience!</p>
    <p style="color: #333; font-size: 16px; line-height: 1.6; padding: 15px; border-radius: 10px; border-left: 4px solid #9333ea;">
      <strong>Our team will contact you within 24-48 hours</strong> to discuss your event details.
    </p>
    <div style="background: white; border-radius: 10px; padding: 20px; margin: 20px 0; border: 1px solid #e0e0e0;">
      <h3 style="color: #9333ea; margin: 0 0 15px 0;">Your Booking Details</h3>
      <table style="width: 100%; border-collapse: collapse;">
        <tr><td style="padding: 8px 0; font-weight: bold; color: #666; width: 40%;">Booking ID:</td><td style="padding: 8px 0; color: #333;">{{.ID}}</td></tr>
        <tr><td style="padding: 8px 0; font-weight: bold; color: #666;">Event Type:</td><td style="padding: 8px 0; color: #333;">{{.EventType}}</td></tr>
        <tr><td style="padding: 8px 0; font-weight: bold; color: #666;">Preferred Contact Time:</td><td style="padding: 8px 0; color: #333;">{{.PreferredTime}}</td></tr>
        <tr><td style="padding: 8px 0; font-weight: bold; color: #666;">Phone:</td><td style="padding: 8px 0; color: #333;">{{.Phone}}</td></tr>
      </table>
    </div>
    <p style="color: #888; font-size: 12px; text-align: center;">&copy; {{.Year}} NedX Technologies. All rights reserved.<br>Flappion - Elevating Magical Moments with Wings</p>
  </div>
</div>`))

	invitationEmailTmpl = template.Must(template.New("invitation").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Invitation</title></head>
<body style="background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222;">
<div style="max-width:640px; margin:20px auto;">
  <div style="background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px;">
    <h2>You're invited</h2>
    <p>You have been invited to manage Flappion bookings as an <strong>admin</strong>.</p>
    <p>Click the button below to set your password. The link expires on {{.ExpiresAt}}.</p>
    <a href="{{.Link}}" target="_blank" style="display:inline-block; padding:12px 20px; background:#9333ea; color:#fff; text-decoration:none; border-radius:6px; margin-top:16px;">Set up my account</a>
    <p>If you did not expect this invitation, you can ignore this email.</p>
  </div>
</div>
</body>
</html>`))
)

type bookingEmailView struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	EventType     string
	PreferredTime string
	Message       string
	Year          int
}

func newBookingEmailView(b models.Booking, now time.Time) bookingEmailView {
	v := bookingEmailView{
		ID:            b.ID,
		Name:          b.Name,
		Email:         b.Email,
		Phone:         b.Phone,
		EventType:     b.EventType,
		PreferredTime: b.PreferredTime,
		Year:          now.Year(),
	}
	if b.Message != nil {
		v.Message = *b.Message
	}
	return v
}

// escaped is the view for plain text parts and subjects. Mail clients may
// render those as HTML, so user fields stay escaped there too.
func (v bookingEmailView) escaped() bookingEmailView {
	v.ID = template.HTMLEscapeString(v.ID)
	v.Name = template.HTMLEscapeString(v.Name)
	v.Email = template.HTMLEscapeString(v.Email)
	v.Phone = template.HTMLEscapeString(v.Phone)
	v.EventType = template.HTMLEscapeString(v.EventType)
	v.PreferredTime = template.HTMLEscapeString(v.PreferredTime)
	v.Message = template.HTMLEscapeString(v.Message)
	return v
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func renderOperatorEmail(b models.Booking, now time.Time) (subject, html, text string, err error) {
	v := newBookingEmailView(b, now)
	html, err = render(operatorEmailTmpl, v)
	if err != nil {
		return "", "", "", err
	}
	t := v.escaped()
	subject = fmt.Sprintf("New Booking Request: %s - %s", t.EventType, t.Name)
	text = fmt.Sprintf("New booking request\n\nName: %s\nEmail: %s\nPhone: %s\nEvent Type: %s\nPreferred Contact Time: %s\n",
		t.Name, t.Email, t.Phone, t.EventType, t.PreferredTime)
	if t.Message != "" {
		text += "Message: " + t.Message + "\n"
	}
	text += "Booking ID: " + t.ID + "\n"
	return subject, html, text, nil
}

func renderCustomerEmail(b models.Booking, now time.Time) (subject, html, text string, err error) {
	v := newBookingEmailView(b, now)
	html, err = render(customerEmailTmpl, v)
	if err != nil {
		return "", "", "", err
	}
	t := v.escaped()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Thank you, %s!\n\n", t.Name))
	sb.WriteString("Your booking request has been received. Our team will contact you within 24-48 hours.\n\n")
	sb.WriteString(fmt.Sprintf("Booking ID: %s\nEvent Type: %s\nPreferred Contact Time: %s\nPhone: %s\n",
		t.ID, t.EventType, t.PreferredTime, t.Phone))
	return "Booking Confirmation - Flappion by NedX", html, sb.String(), nil
}

func renderInvitationEmail(link string, expiresAt time.Time) (subject, html, text string, err error) {
	expires := expiresAt.UTC().Format("Jan 2, 2006 15:04 UTC")
	html, err = render(invitationEmailTmpl, struct {
		Link      string
		ExpiresAt string
	}{Link: link, ExpiresAt: expires})
	if err != nil {
		return "", "", "", err
	}
	text = fmt.Sprintf("You have been invited to manage Flappion bookings as an admin.\n"+
		"Set your password using the link below (expires %s):\n%s\n\n"+
		"If you did not expect this invitation, you can ignore this email.\n", expires, link)
	return "You're invited to the Flappion admin dashboard", html, text, nil
}
