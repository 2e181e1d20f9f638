package services

import (
	"context"
	"fmt"
	"time"

	"remold-service/internal/models"
	"remold-service/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService define la interfaz de autenticación
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Registrar(ctx context.Context, req *models.RegistrarUsuarioRequest) (*models.Usuario, error)
	GetUsuario(ctx context.Context, id int) (*models.Usuario, error)
}

// authService implementa AuthService
type authService struct {
	repo        repository.UsuarioRepository
	secret      []byte
	expiryHours int
	logger      *zap.Logger
}

// NewAuthService crea una nueva instancia del servicio
func NewAuthService(repo repository.UsuarioRepository, secret string, expiryHours int, logger *zap.Logger) AuthService {
	return &authService{
		repo:        repo,
		secret:      []byte(secret),
		expiryHours: expiryHours,
		logger:      logger,
	}
}

// Login verifica credenciales y emite un JWT HS256
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	logger := s.logger.With(
		zap.String("operation", "login"),
		zap.String("usuario", req.Usuario),
	)

	usuario, err := s.repo.GetByUsuario(ctx, req.Usuario)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo usuario: %w", err)
	}
	if usuario == nil {
		logger.Warn("Intento de login con usuario inexistente")
		return nil, ErrCredenciales
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Intento de login con contraseña incorrecta")
		return nil, ErrCredenciales
	}

	claims := jwt.MapClaims{
		"userID":  usuario.ID,
		"usuario": usuario.Usuario,
		"rol":     usuario.Rol,
		"exp":     time.Now().Add(time.Duration(s.expiryHours) * time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("error firmando token: %w", err)
	}

	logger.Info("Login exitoso", zap.String("rol", usuario.Rol))

	return &models.LoginResponse{
		Token:   token,
		Usuario: usuario,
	}, nil
}

// Registrar crea un usuario con hash bcrypt
func (s *authService) Registrar(ctx context.Context, req *models.RegistrarUsuarioRequest) (*models.Usuario, error) {
	existente, err := s.repo.GetByUsuario(ctx, req.Usuario)
	if err != nil {
		return nil, fmt.Errorf("error verificando usuario: %w", err)
	}
	if existente != nil {
		return nil, fmt.Errorf("el usuario %s ya existe", req.Usuario)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error generando hash: %w", err)
	}

	usuario := &models.Usuario{
		Usuario:      req.Usuario,
		Nombre:       req.Nombre,
		PasswordHash: string(hash),
		Rol:          req.Rol,
	}

	if err := s.repo.Crear(ctx, usuario); err != nil {
		return nil, fmt.Errorf("error creando usuario: %w", err)
	}

	s.logger.Info("Usuario registrado",
		zap.String("usuario", usuario.Usuario),
		zap.String("rol", usuario.Rol))

	return usuario, nil
}

// GetUsuario obtiene un usuario por id
func (s *authService) GetUsuario(ctx context.Context, id int) (*models.Usuario, error) {
	usuario, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, fmt.Errorf("%w: usuario %d", ErrNoEncontrado, id)
	}
	return usuario, nil
}
