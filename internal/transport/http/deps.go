package http

import (
	jwtinfra "github.com/drughub-api/internal/infrastructure/jwt"
	"github.com/drughub-api/internal/infrastructure/postgres"
	redisinfra "github.com/drughub-api/internal/infrastructure/redis"
	"github.com/drughub-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *postgres.UserRepo
	RoleRepo     *postgres.RoleRepo
	SessionStore *redisinfra.SessionStore
	OTPSecrets   *redisinfra.OTPSecretStore
	Mailer       smtp.Mailer
	JWTProvider  *jwtinfra.Provider
}
