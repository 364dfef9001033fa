package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/khalsa-property/backend/models"
	"github.com/khalsa-property/backend/otp"
	"github.com/khalsa-property/backend/store"
	"github.com/khalsa-property/backend/utils"
)

type MessageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(MessageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// SendOTP starts the lead verification handshake: reject emails that already
// have a persisted lead, mint a pending code for everyone else and mail it.
func SendOTP(leads store.LeadStore, registry otp.Registry, mailer utils.EmailSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form models.LeadForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			log.Printf("Invalid lead form payload: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid request payload.")
			return
		}
		if form.Name == "" || form.Email == "" || form.Phone == "" {
			writeMessage(w, http.StatusBadRequest, "Name, email, and phone are required.")
			return
		}

		existing, err := leads.FindByEmail(r.Context(), form.Email)
		if err != nil {
			log.Printf("Error checking for existing lead %s: %v", form.Email, err)
			writeMessage(w, http.StatusInternalServerError, "Server error while sending OTP.")
			return
		}
		if existing != nil {
			writeMessage(w, http.StatusBadRequest, "Email already exists. Please use another email ID.")
			return
		}

		code, err := registry.Issue(r.Context(), form.Email, form)
		if err != nil {
			log.Printf("Error issuing OTP for %s: %v", form.Email, err)
			writeMessage(w, http.StatusInternalServerError, "Server error while sending OTP.")
			return
		}

		subject := "Your One-Time Password (OTP) - Khalsa Property Dealer"
		if err := mailer.Send(form.Email, subject, otpEmailBody(form.Name, code)); err != nil {
			// Delivery is best effort: the pending record stands and the
			// applicant can re-request a code.
			log.Printf("Failed to send OTP email to %s: %v", form.Email, err)
		}

		writeMessage(w, http.StatusOK, "OTP sent to email.")
	}
}

// VerifyOTP completes the handshake: a matching code persists the lead held
// in the registry, discards the pending record and triggers both
// notification emails.
func VerifyOTP(leads store.LeadStore, registry otp.Registry, mailer utils.EmailSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Invalid verify payload: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid request payload.")
			return
		}

		pending, ok, err := registry.Peek(r.Context(), req.Email)
		if err != nil {
			log.Printf("Error reading pending verification for %s: %v", req.Email, err)
			writeMessage(w, http.StatusInternalServerError, "Server error while verifying OTP.")
			return
		}
		if !ok {
			writeMessage(w, http.StatusBadRequest, "OTP expired or not found.")
			return
		}

		if !pending.Matches(req.OTP) {
			// The record stays; the applicant may retry with the right code.
			writeMessage(w, http.StatusBadRequest, "Invalid OTP.")
			return
		}

		form := pending.Form
		lead := &models.Lead{
			Name:      form.Name,
			Email:     form.Email,
			Phone:     form.Phone,
			Message:   form.Message,
			Purpose:   form.Purpose,
			Verified:  true,
			CreatedAt: time.Now(),
		}

		if err := leads.Insert(r.Context(), lead); err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				// A concurrent verification for the same email won the race.
				writeMessage(w, http.StatusBadRequest, "Email already exists. Please use another email ID.")
				return
			}
			log.Printf("Error saving lead for %s: %v", form.Email, err)
			writeMessage(w, http.StatusInternalServerError, "Server error while saving lead.")
			return
		}

		if err := registry.Consume(r.Context(), req.Email); err != nil {
			log.Printf("Error discarding pending verification for %s: %v", req.Email, err)
		}

		// Both notifications are best effort; the lead is already persisted.
		if err := mailer.Send(form.Email, "We've received your query - KPD", confirmationEmailBody(form.Name)); err != nil {
			log.Printf("Failed to send confirmation email to %s: %v", form.Email, err)
		}
		if notify := os.Getenv("LEADS_NOTIFY_EMAIL"); notify != "" {
			if err := mailer.Send(notify, "New Lead Captured - KPD", leadAlertBody(form)); err != nil {
				log.Printf("Failed to send lead alert to %s: %v", notify, err)
			}
		}

		writeMessage(w, http.StatusOK, "Lead captured, confirmation sent, team notified.")
	}
}

// GetLeads returns every verified lead, newest first.
func GetLeads(leads store.LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := leads.ListAll(r.Context())
		if err != nil {
			log.Printf("Error fetching leads: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server error while fetching leads.")
			return
		}
		if all == nil {
			all = []models.Lead{}
		}
		writeJSON(w, http.StatusOK, all)
	}
}

func otpEmailBody(name, code string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; padding: 20px; background: #f7f7f7;">
      <div style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 25px; border-radius: 8px; border: 1px solid #e5e5e5;">
        <h2 style="color: #14469d; margin-top: 0;">Hello %s,</h2>
        <p style="font-size: 15px; color: #333;">
          Thank you for choosing <strong>Khalsa Property Dealer</strong>.
          To verify your identity, please use the One-Time Password (OTP) given below:
        </p>
        <div style="text-align: center; margin: 25px 0;">
          <p style="font-size: 24px; letter-spacing: 4px; font-weight: bold; color: #ed1c24; margin: 0;">%s</p>
        </div>
        <p style="font-size: 14px; color: #444;">
          This OTP is valid for the next <strong>10 minutes</strong>.
          Please do not share it with anyone for your security.
        </p>
        <p style="font-size: 14px; color: #444;">
          If you did not request this, please ignore the message or contact our support team immediately.
        </p>
        <br/>
        <p style="font-size: 14px; color: #333;">
          Warm regards,<br/>
          <strong>Khalsa Property Dealer Team</strong>
        </p>
      </div>
    </div>`, html.EscapeString(name), html.EscapeString(code))
}

func confirmationEmailBody(name string) string {
	return fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
        <div style="padding: 20px; background-color: #f9f9f9; border-radius: 10px;">
          <h2 style="color: #333;">Hello %s,</h2>
          <p style="font-size: 16px; color: #555;">
            Thank you for reaching out to <strong>KPD</strong>.
            We have received your message and our team will get in touch with you within the next 24-48 hours.
          </p>
          <p style="font-size: 16px; color: #555;">
            Meanwhile, feel free to explore more about our services or reply to this email if you have any additional questions.
          </p>
          <p style="margin-top: 30px; font-size: 15px; color: #777;">
            Regards,<br />
            <strong>Team KPD</strong>
          </p>
        </div>
      </div>`, html.EscapeString(name))
}

func leadAlertBody(form models.LeadForm) string {
	return fmt.Sprintf(`
      <h3>New Lead Details</h3>
      <p><strong>Name:</strong> %s</p>
      <p><strong>Email:</strong> %s</p>
      <p><strong>Phone:</strong> %s</p>
      <p><strong>Purpose:</strong> %s</p>
      <p><strong>Message:</strong><br /> %s</p>`,
		html.EscapeString(form.Name),
		html.EscapeString(form.Email),
		html.EscapeString(form.Phone),
		html.EscapeString(form.Purpose),
		html.EscapeString(form.Message))
}
