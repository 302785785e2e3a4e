package middleware

import (
	"errors"
	"os"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ShareClaims binds a report-access token to one patient/score pair and the
// doctor it was issued for.
type ShareClaims struct {
	PatientID   int64  `json:"pid"`
	ScoreID     int64  `json:"sid"`
	DoctorEmail string `json:"doc"`
	jwt.RegisteredClaims
}

func secret() []byte {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		s = "qolportal-dev-secret"
	}
	return []byte(s)
}

// SignShareToken issues an HS256 token granting read access to one report.
func SignShareToken(patientID, scoreID int64, doctorEmail string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ShareClaims{
		PatientID:   patientID,
		ScoreID:     scoreID,
		DoctorEmail: doctorEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ParseShareToken validates a share token and returns its claims.
func ParseShareToken(tok string) (*ShareClaims, error) {
	t, err := jwt.ParseWithClaims(tok, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) { return secret(), nil })
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*ShareClaims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
