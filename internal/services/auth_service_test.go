package services

import (
	"context"
	"testing"

	"remold-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "secreto-de-prueba"

func usuarioConPassword(t *testing.T, password string) *models.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &models.Usuario{
		ID:           1,
		Usuario:      "operador1",
		Nombre:       "Operador Uno",
		PasswordHash: string(hash),
		Rol:          models.RolOperador,
		Activo:       true,
	}
}

func TestLoginExitoso(t *testing.T) {
	repo := new(MockUsuarioRepository)
	svc := NewAuthService(repo, testSecret, 24, zap.NewNop())

	repo.On("GetByUsuario", mock.Anything, "operador1").
		Return(usuarioConPassword(t, "clave-correcta"), nil).Once()

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Usuario:  "operador1",
		Password: "clave-correcta",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "operador1", resp.Usuario.Usuario)

	// El token debe ser verificable con el mismo secreto y llevar los claims
	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(1), claims["userID"])
	assert.Equal(t, models.RolOperador, claims["rol"])
}

func TestLoginPasswordIncorrecta(t *testing.T) {
	repo := new(MockUsuarioRepository)
	svc := NewAuthService(repo, testSecret, 24, zap.NewNop())

	repo.On("GetByUsuario", mock.Anything, "operador1").
		Return(usuarioConPassword(t, "clave-correcta"), nil).Once()

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Usuario:  "operador1",
		Password: "clave-incorrecta",
	})

	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestLoginUsuarioInexistente(t *testing.T) {
	repo := new(MockUsuarioRepository)
	svc := NewAuthService(repo, testSecret, 24, zap.NewNop())

	repo.On("GetByUsuario", mock.Anything, "nadie").Return(nil, nil).Once()

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Usuario:  "nadie",
		Password: "lo-que-sea",
	})

	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestRegistrarUsuarioDuplicado(t *testing.T) {
	repo := new(MockUsuarioRepository)
	svc := NewAuthService(repo, testSecret, 24, zap.NewNop())

	repo.On("GetByUsuario", mock.Anything, "operador1").
		Return(usuarioConPassword(t, "x"), nil).Once()

	_, err := svc.Registrar(context.Background(), &models.RegistrarUsuarioRequest{
		Usuario:  "operador1",
		Nombre:   "Otro",
		Password: "12345678",
		Rol:      models.RolOperador,
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Crear")
}

func TestRegistrarGuardaHashVerificable(t *testing.T) {
	repo := new(MockUsuarioRepository)
	svc := NewAuthService(repo, testSecret, 24, zap.NewNop())

	repo.On("GetByUsuario", mock.Anything, "nuevo").Return(nil, nil).Once()
	repo.On("Crear", mock.Anything, mock.MatchedBy(func(u *models.Usuario) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("clave-segura")) == nil
	})).Return(nil).Once()

	usuario, err := svc.Registrar(context.Background(), &models.RegistrarUsuarioRequest{
		Usuario:  "nuevo",
		Nombre:   "Usuario Nuevo",
		Password: "clave-segura",
		Rol:      models.RolSupervisor,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, "clave-segura", usuario.PasswordHash)
	repo.AssertExpectations(t)
}
