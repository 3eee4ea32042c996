package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPStartResult reports a started phone login. Code is set only when the
// authenticator reveals codes.
type OTPStartResult struct {
	OK   bool   `json:"ok"`
	Code string `json:"code,omitempty"`
}

// generateCode returns a uniformly random six digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// StartOTP issues a fresh code for phone, creating the account on first use,
// and sends it by SMS.
func (a *BasicAuthenticator) StartOTP(ctx context.Context, phone string) (*OTPStartResult, error) {
	phone = strings.TrimSpace(phone)
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	now := a.now()
	expires := now.Add(a.otpTTL)

	user := models.User{Phone: &phone, OTPCode: code, OTPExpiresAt: &expires, OTPSentAt: &now}
	err = a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"otp_code", "otp_expires_at", "otp_sent_at", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf("Your Bakchoddost verification code is %s", code)
	if a.sms == nil {
		err = errors.New("no sms sender")
	} else {
		err = a.sms.Send(ctx, phone, body)
	}
	if err != nil {
		slog.Error("OTP delivery failed", "error", err, "reveal", a.revealOTP)
		if !a.revealOTP {
			return nil, ErrSMSUnavailable
		}
	}

	if a.revealOTP {
		return &OTPStartResult{OK: true, Code: code}, nil
	}
	return &OTPStartResult{OK: true}, nil
}

// ConfirmOTP checks the code for phone, clears it, and logs the user in.
func (a *BasicAuthenticator) ConfirmOTP(ctx context.Context, phone, code string) (*LoginResponse, error) {
	phone = strings.TrimSpace(phone)

	var user models.User
	err := a.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.OTPCode == "" || user.OTPExpiresAt == nil {
		return nil, ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(code)) != 1 {
		return nil, ErrInvalidOTP
	}
	if user.OTPExpiresAt.Before(a.now()) {
		return nil, ErrOTPExpired
	}

	err = a.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"otp_code":       "",
		"otp_expires_at": nil,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("clear otp: %w", err)
	}
	user.OTPCode = ""
	user.OTPExpiresAt = nil

	slog.Info("User logged in with OTP", "user_id", user.ID)
	return a.respond(&user)
}
