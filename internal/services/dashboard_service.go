package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"remold-service/internal/database"
	"remold-service/internal/models"
	"remold-service/internal/repository"

	"go.uber.org/zap"
)

const (
	dashboardResumenKey = "dashboard:resumen"
	dashboardResumenTTL = 5 * time.Minute
)

// CacheStatsProvider expone las estadísticas del caché de stock
type CacheStatsProvider interface {
	Stats() map[string]interface{}
}

// DashboardService define la interfaz de agregados del panel
type DashboardService interface {
	Resumen(ctx context.Context) (*models.DashboardResumen, error)
	ProduccionDiaria(ctx context.Context, dias int) ([]*models.ProduccionDiariaPunto, error)
	ConsumoMateriales(ctx context.Context, dias int) ([]*models.ConsumoMaterialPunto, error)
	Valorizacion(ctx context.Context) ([]*models.ValorizacionItem, error)
	CacheStats(ctx context.Context) map[string]interface{}
	InvalidarResumen(ctx context.Context)
}

// dashboardService implementa DashboardService
type dashboardService struct {
	produccionRepo repository.ProduccionRepository
	stockRepo      repository.StockRepository
	recetaRepo     repository.RecetaRepository
	redis          *database.RedisDB
	cacheStats     CacheStatsProvider
	logger         *zap.Logger
}

// NewDashboardService crea una nueva instancia del servicio
func NewDashboardService(
	produccionRepo repository.ProduccionRepository,
	stockRepo repository.StockRepository,
	recetaRepo repository.RecetaRepository,
	redis *database.RedisDB,
	cacheStats CacheStatsProvider,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		produccionRepo: produccionRepo,
		stockRepo:      stockRepo,
		recetaRepo:     recetaRepo,
		redis:          redis,
		cacheStats:     cacheStats,
		logger:         logger,
	}
}

// Resumen arma los contadores del panel; el resultado se cachea en Redis
// porque cruza varias tablas y el panel lo consulta en cada carga
func (s *dashboardService) Resumen(ctx context.Context) (*models.DashboardResumen, error) {
	if cached := s.resumenDesdeCache(ctx); cached != nil {
		return cached, nil
	}

	hoy := time.Now().Format("2006-01-02")
	inicioMes := time.Now().Format("2006-01") + "-01"

	unidadesHoy, _, err := s.produccionRepo.UnidadesEnRango(ctx, hoy, hoy)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo unidades de hoy: %w", err)
	}

	unidadesMes, perdidasMes, err := s.produccionRepo.UnidadesEnRango(ctx, inicioMes, hoy)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo unidades del mes: %w", err)
	}

	valorMateriales, err := s.stockRepo.ValorPorTipo(ctx, models.TipoItemMaterial)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo valor de materiales: %w", err)
	}

	valorProductos, err := s.stockRepo.ValorPorTipo(ctx, models.TipoItemProducto)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo valor de productos: %w", err)
	}

	bajoMinimo, err := s.stockRepo.ContarBajoMinimo(ctx)
	if err != nil {
		return nil, fmt.Errorf("error contando items bajo mínimo: %w", err)
	}

	recetasActivas, err := s.recetaRepo.ContarActivas(ctx)
	if err != nil {
		return nil, fmt.Errorf("error contando recetas: %w", err)
	}

	produccionesTotal, err := s.produccionRepo.Contar(ctx)
	if err != nil {
		return nil, fmt.Errorf("error contando producciones: %w", err)
	}

	resumen := &models.DashboardResumen{
		UnidadesHoy:       unidadesHoy,
		UnidadesMes:       unidadesMes,
		PerdidasMes:       perdidasMes,
		ValorMateriales:   valorMateriales,
		ValorProductos:    valorProductos,
		ItemsBajoMinimo:   bajoMinimo,
		RecetasActivas:    recetasActivas,
		ProduccionesTotal: produccionesTotal,
	}

	s.guardarResumenEnCache(ctx, resumen)
	return resumen, nil
}

func (s *dashboardService) resumenDesdeCache(ctx context.Context) *models.DashboardResumen {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Client.Get(ctx, dashboardResumenKey).Bytes()
	if err != nil {
		return nil
	}

	var resumen models.DashboardResumen
	if err := json.Unmarshal(data, &resumen); err != nil {
		s.logger.Warn("Resumen cacheado corrupto, descartando", zap.Error(err))
		s.redis.Client.Del(ctx, dashboardResumenKey)
		return nil
	}

	return &resumen
}

func (s *dashboardService) guardarResumenEnCache(ctx context.Context, resumen *models.DashboardResumen) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(resumen)
	if err != nil {
		return
	}

	if err := s.redis.Client.Set(ctx, dashboardResumenKey, data, dashboardResumenTTL).Err(); err != nil {
		s.logger.Warn("No se pudo cachear el resumen del dashboard", zap.Error(err))
	}
}

// InvalidarResumen descarta el resumen cacheado. Los servicios de stock y
// recetas lo llaman tras cada escritura confirmada (los flujos de
// producción pasan por ahí vía NotificarActualizacion) para que el panel
// refleje el cambio en la siguiente consulta.
func (s *dashboardService) InvalidarResumen(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Client.Del(ctx, dashboardResumenKey).Err(); err != nil {
		s.logger.Warn("No se pudo invalidar el resumen del dashboard", zap.Error(err))
	}
}

// ProduccionDiaria serie de unidades producidas y pérdidas por día
func (s *dashboardService) ProduccionDiaria(ctx context.Context, dias int) ([]*models.ProduccionDiariaPunto, error) {
	if dias <= 0 || dias > 365 {
		dias = 30
	}
	return s.produccionRepo.SerieDiaria(ctx, dias)
}

// ConsumoMateriales consumo agregado por material en el período
func (s *dashboardService) ConsumoMateriales(ctx context.Context, dias int) ([]*models.ConsumoMaterialPunto, error) {
	if dias <= 0 || dias > 365 {
		dias = 30
	}
	return s.produccionRepo.ConsumoMateriales(ctx, dias)
}

// Valorizacion valor de inventario item por item
func (s *dashboardService) Valorizacion(ctx context.Context) ([]*models.ValorizacionItem, error) {
	return s.stockRepo.Valorizacion(ctx)
}

// CacheStats estadísticas del caché L1/L2 de stock
func (s *dashboardService) CacheStats(ctx context.Context) map[string]interface{} {
	if s.cacheStats == nil {
		return map[string]interface{}{}
	}
	return s.cacheStats.Stats()
}
