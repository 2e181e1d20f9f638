package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"remold-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheStats estadísticas del caché
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	TotalKeys     int
}

// StockCache caché multi-nivel de filas de stock, clave (tipo_item, item_id)
type StockCache struct {
	// L1: memoria local (más rápido)
	l1Cache map[string]*models.Stock
	l1Mutex sync.RWMutex

	// L2: Redis (compartido entre instancias)
	redisClient *redis.Client

	maxL1Size int
	ttl       time.Duration

	logger *zap.Logger

	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewStockCache crea una nueva instancia del caché
func NewStockCache(redisClient *redis.Client, maxL1Size int, ttl time.Duration, logger *zap.Logger) *StockCache {
	sc := &StockCache{
		l1Cache:     make(map[string]*models.Stock),
		redisClient: redisClient,
		maxL1Size:   maxL1Size,
		ttl:         ttl,
		logger:      logger,
	}

	go sc.cleanupL1Cache()

	return sc
}

func cacheKey(tipoItem, itemID string) string {
	return fmt.Sprintf("%s:%s", tipoItem, itemID)
}

// Get busca una fila de stock con caché multi-nivel; nil en miss
func (sc *StockCache) Get(ctx context.Context, tipoItem, itemID string) *models.Stock {
	start := time.Now()
	key := cacheKey(tipoItem, itemID)

	// 1. L1 (memoria local)
	if stock := sc.getFromL1(key); stock != nil {
		sc.recordHit()
		sc.logger.Debug("L1 cache hit",
			zap.String("key", key),
			zap.Duration("latency", time.Since(start)))
		return stock
	}

	// 2. L2 (Redis)
	if stock, err := sc.getFromL2(ctx, key); err == nil && stock != nil {
		// Promover a L1 para futuras consultas
		sc.setToL1(key, stock)
		sc.recordHit()
		sc.logger.Debug("L2 cache hit",
			zap.String("key", key),
			zap.Duration("latency", time.Since(start)))
		return stock
	}

	sc.recordMiss()
	sc.logger.Debug("Cache miss",
		zap.String("key", key),
		zap.Duration("latency", time.Since(start)))

	return nil
}

// Set almacena una fila en ambos niveles
func (sc *StockCache) Set(ctx context.Context, stock *models.Stock) {
	key := cacheKey(stock.TipoItem, stock.ItemID)

	sc.setToL1(key, stock)

	if err := sc.setToL2(ctx, key, stock); err != nil {
		sc.logger.Warn("No se pudo escribir en L2 cache",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Invalidate elimina la fila de ambos niveles
func (sc *StockCache) Invalidate(ctx context.Context, tipoItem, itemID string) {
	key := cacheKey(tipoItem, itemID)

	sc.l1Mutex.Lock()
	delete(sc.l1Cache, key)
	sc.l1Mutex.Unlock()

	if err := sc.redisClient.Del(ctx, redisKey(key)).Err(); err != nil {
		sc.logger.Warn("No se pudo invalidar en L2 cache",
			zap.String("key", key),
			zap.Error(err))
	}
}

// GetStats retorna estadísticas del caché
func (sc *StockCache) GetStats() CacheStats {
	sc.statsMutex.RLock()
	defer sc.statsMutex.RUnlock()

	sc.l1Mutex.RLock()
	totalKeys := len(sc.l1Cache)
	sc.l1Mutex.RUnlock()

	return CacheStats{
		Hits:          sc.hits,
		Misses:        sc.misses,
		TotalRequests: sc.hits + sc.misses,
		TotalKeys:     totalKeys,
	}
}

// Stats estadísticas en formato del endpoint de dashboard
func (sc *StockCache) Stats() map[string]interface{} {
	stats := sc.GetStats()
	hitRate := 0.0
	if stats.TotalRequests > 0 {
		hitRate = float64(stats.Hits) / float64(stats.TotalRequests)
	}
	return map[string]interface{}{
		"hits":           stats.Hits,
		"misses":         stats.Misses,
		"total_requests": stats.TotalRequests,
		"total_keys":     stats.TotalKeys,
		"hit_rate":       hitRate,
	}
}

func (sc *StockCache) recordHit() {
	sc.statsMutex.Lock()
	sc.hits++
	sc.statsMutex.Unlock()
}

func (sc *StockCache) recordMiss() {
	sc.statsMutex.Lock()
	sc.misses++
	sc.statsMutex.Unlock()
}

func (sc *StockCache) getFromL1(key string) *models.Stock {
	sc.l1Mutex.RLock()
	defer sc.l1Mutex.RUnlock()
	return sc.l1Cache[key]
}

func (sc *StockCache) setToL1(key string, stock *models.Stock) {
	sc.l1Mutex.Lock()
	defer sc.l1Mutex.Unlock()

	if len(sc.l1Cache) >= sc.maxL1Size {
		sc.evict()
	}

	sc.l1Cache[key] = stock
}

// evict elimina una entrada arbitraria cuando L1 está lleno
func (sc *StockCache) evict() {
	for key := range sc.l1Cache {
		delete(sc.l1Cache, key)
		break
	}
}

func redisKey(key string) string {
	return fmt.Sprintf("stock:%s", key)
}

func (sc *StockCache) getFromL2(ctx context.Context, key string) (*models.Stock, error) {
	data, err := sc.redisClient.Get(ctx, redisKey(key)).Result()
	if err != nil {
		return nil, err
	}

	var stock models.Stock
	if err := json.Unmarshal([]byte(data), &stock); err != nil {
		return nil, err
	}

	return &stock, nil
}

func (sc *StockCache) setToL2(ctx context.Context, key string, stock *models.Stock) error {
	data, err := json.Marshal(stock)
	if err != nil {
		return err
	}

	return sc.redisClient.Set(ctx, redisKey(key), data, sc.ttl).Err()
}

// cleanupL1Cache limpia el L1 periódicamente
func (sc *StockCache) cleanupL1Cache() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sc.l1Mutex.Lock()
		if len(sc.l1Cache) > sc.maxL1Size {
			sc.l1Cache = make(map[string]*models.Stock)
		}
		sc.logger.Debug("L1 cache cleanup", zap.Int("items", len(sc.l1Cache)))
		sc.l1Mutex.Unlock()
	}
}
