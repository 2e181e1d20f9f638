package services

import (
	"context"
	"encoding/json"
	"fmt"

	"remold-service/internal/models"
	"remold-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Valores por defecto cuando la configuración aún no fue guardada
var (
	margenObjetivoDefault = decimal.NewFromInt(30)
	monedaDefault         = "CLP"
)

// FinanzasService define la interfaz de configuración financiera y costeo
type FinanzasService interface {
	GetConfiguracion(ctx context.Context) (*models.ConfiguracionFinanciera, error)
	ActualizarConfiguracion(ctx context.Context, req *models.ActualizarConfiguracionRequest) (*models.ConfiguracionFinanciera, error)
	CostoReceta(ctx context.Context, idReceta int) (*models.CostoReceta, error)
}

// finanzasService implementa FinanzasService
type finanzasService struct {
	repo       repository.FinanzasRepository
	recetaRepo repository.RecetaRepository
	stockRepo  repository.StockRepository
	logger     *zap.Logger
}

// NewFinanzasService crea una nueva instancia del servicio
func NewFinanzasService(repo repository.FinanzasRepository, recetaRepo repository.RecetaRepository, stockRepo repository.StockRepository, logger *zap.Logger) FinanzasService {
	return &finanzasService{
		repo:       repo,
		recetaRepo: recetaRepo,
		stockRepo:  stockRepo,
		logger:     logger,
	}
}

// GetConfiguracion arma la configuración desde la tabla clave/valor,
// aplicando defaults para claves no guardadas
func (s *finanzasService) GetConfiguracion(ctx context.Context) (*models.ConfiguracionFinanciera, error) {
	valores, err := s.repo.GetTodas(ctx)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo configuración: %w", err)
	}

	config := &models.ConfiguracionFinanciera{
		MargenObjetivo:    margenObjetivoDefault,
		CostoManoObraHora: decimal.Zero,
		CostosIndirectos:  decimal.Zero,
		Moneda:            monedaDefault,
	}

	if err := decodificarDecimal(valores, models.ClaveMargenObjetivo, &config.MargenObjetivo); err != nil {
		return nil, err
	}
	if err := decodificarDecimal(valores, models.ClaveCostoManoObraHora, &config.CostoManoObraHora); err != nil {
		return nil, err
	}
	if err := decodificarDecimal(valores, models.ClaveCostosIndirectos, &config.CostosIndirectos); err != nil {
		return nil, err
	}
	if raw, ok := valores[models.ClaveMoneda]; ok {
		if err := json.Unmarshal(raw, &config.Moneda); err != nil {
			return nil, fmt.Errorf("valor inválido para %s: %w", models.ClaveMoneda, err)
		}
	}

	return config, nil
}

func decodificarDecimal(valores map[string]json.RawMessage, clave string, destino *decimal.Decimal) error {
	raw, ok := valores[clave]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, destino); err != nil {
		return fmt.Errorf("valor inválido para %s: %w", clave, err)
	}
	return nil
}

// ActualizarConfiguracion aplica un upsert parcial clave por clave
func (s *finanzasService) ActualizarConfiguracion(ctx context.Context, req *models.ActualizarConfiguracionRequest) (*models.ConfiguracionFinanciera, error) {
	if req.MargenObjetivo != nil {
		if req.MargenObjetivo.IsNegative() {
			return nil, fmt.Errorf("el margen objetivo no puede ser negativo")
		}
		if err := s.set(ctx, models.ClaveMargenObjetivo, req.MargenObjetivo); err != nil {
			return nil, err
		}
	}
	if req.CostoManoObraHora != nil {
		if req.CostoManoObraHora.IsNegative() {
			return nil, fmt.Errorf("el costo de mano de obra no puede ser negativo")
		}
		if err := s.set(ctx, models.ClaveCostoManoObraHora, req.CostoManoObraHora); err != nil {
			return nil, err
		}
	}
	if req.CostosIndirectos != nil {
		if req.CostosIndirectos.IsNegative() {
			return nil, fmt.Errorf("los costos indirectos no pueden ser negativos")
		}
		if err := s.set(ctx, models.ClaveCostosIndirectos, req.CostosIndirectos); err != nil {
			return nil, err
		}
	}
	if req.Moneda != nil {
		if err := s.set(ctx, models.ClaveMoneda, req.Moneda); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Configuración financiera actualizada")
	return s.GetConfiguracion(ctx)
}

func (s *finanzasService) set(ctx context.Context, clave string, valor interface{}) error {
	raw, err := json.Marshal(valor)
	if err != nil {
		return fmt.Errorf("error serializando %s: %w", clave, err)
	}
	if err := s.repo.Set(ctx, clave, raw); err != nil {
		return fmt.Errorf("error guardando %s: %w", clave, err)
	}
	return nil
}

// CostoReceta calcula el costo por unidad de una receta a los costos
// promedio ponderados actuales del stock, más mano de obra e indirectos,
// y el precio sugerido según el margen objetivo
func (s *finanzasService) CostoReceta(ctx context.Context, idReceta int) (*models.CostoReceta, error) {
	receta, err := s.recetaRepo.GetByID(ctx, idReceta)
	if err != nil {
		return nil, err
	}
	if receta == nil {
		return nil, fmt.Errorf("%w: receta %d", ErrNoEncontrado, idReceta)
	}

	config, err := s.GetConfiguracion(ctx)
	if err != nil {
		return nil, err
	}

	costo := &models.CostoReceta{
		IDReceta:       receta.ID,
		NombreProducto: receta.NombreProducto,
		Moneda:         config.Moneda,
		Detalle:        make([]models.CostoMaterial, 0, len(receta.Materiales)),
	}

	costoMateriales := decimal.Zero
	for _, material := range receta.Materiales {
		costoUnitario := decimal.Zero
		stock, err := s.stockRepo.GetByItem(ctx, nil, material.IDMaterial, models.TipoItemMaterial)
		if err != nil {
			return nil, fmt.Errorf("error obteniendo stock de %s: %w", material.IDMaterial, err)
		}
		if stock != nil {
			costoUnitario = stock.CostoUnitario
		}

		subtotal := material.CantidadNecesaria.Mul(costoUnitario)
		costoMateriales = costoMateriales.Add(subtotal)

		costo.Detalle = append(costo.Detalle, models.CostoMaterial{
			IDMaterial:        material.IDMaterial,
			NombreMaterial:    material.NombreMaterial,
			Unidad:            material.Unidad,
			CantidadNecesaria: material.CantidadNecesaria,
			CostoUnitario:     costoUnitario,
			Subtotal:          subtotal,
		})
	}

	costo.CostoMateriales = costoMateriales
	costo.CostoManoObra = config.CostoManoObraHora
	costo.CostosIndirectos = config.CostosIndirectos
	costo.CostoTotal = costoMateriales.Add(config.CostoManoObraHora).Add(config.CostosIndirectos)

	// PrecioSugerido = CostoTotal / (1 - margen/100); margen >= 100 no tiene precio finito
	margen := config.MargenObjetivo.Div(decimal.NewFromInt(100))
	divisor := decimal.NewFromInt(1).Sub(margen)
	if divisor.IsPositive() {
		costo.PrecioSugerido = costo.CostoTotal.Div(divisor).Round(2)
	} else {
		costo.PrecioSugerido = costo.CostoTotal
	}

	return costo, nil
}
