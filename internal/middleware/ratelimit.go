package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/kenta/hondana/internal/model"
)

// RateLimitClass はレート制限のルートクラスを表す。
type RateLimitClass string

const (
	// ClassGeneral はAPI全般のレート制限クラス。
	ClassGeneral RateLimitClass = "general"
	// ClassAuth は認証ルート用の厳格なレート制限クラス。
	ClassAuth RateLimitClass = "auth"
	// ClassReset は資格情報リセット用の最も厳格なレート制限クラス。
	ClassReset RateLimitClass = "reset"
)

// RateLimiterConfig はレート制限の設定を保持する。
// 各クラスは独立したカウンターを持つ。
type RateLimiterConfig struct {
	GeneralRate  rate.Limit // API全般のレート（req/sec）
	GeneralBurst int
	AuthRate     rate.Limit // 認証ルートのレート（req/sec）
	AuthBurst    int
	ResetRate    rate.Limit // 資格情報リセットのレート（req/sec）
	ResetBurst   int

	// TrustProxy が真の場合、X-Forwarded-Forの先頭エントリをクライアントアドレスとして使う。
	TrustProxy bool

	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 認証ルート 5 req/15分、API全般 generalPerWindow req/15分、リセット 3 req/60分。
func DefaultRateLimiterConfig(generalPerWindow int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalPerWindow) / (15 * 60)),
		GeneralBurst:    generalPerWindow,
		AuthRate:        rate.Limit(5.0 / (15 * 60)),
		AuthBurst:       5,
		ResetRate:       rate.Limit(3.0 / (60 * 60)),
		ResetBurst:      3,
		CleanupInterval: 5 * time.Minute,
	}
}

// ViolationRecorder はレート制限違反のメトリクス記録インターフェース。
type ViolationRecorder interface {
	RecordRateLimitViolation(class string)
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
// lastAccessはUnixナノ秒。読み取りロック保持中にも更新できるようatomicで持つ。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

func (cl *clientLimiter) touch() {
	cl.lastAccess.Store(time.Now().UnixNano())
}

// limiterSet は1クラス分のクライアント別リミッター群。
type limiterSet struct {
	mu       sync.RWMutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
}

// RateLimiter はクライアントアドレスごとのレート制限を3クラス独立で管理する。
// カウンターはプロセスローカルであり、複数インスタンス構成では
// インスタンスごとの制限になる（既知の弱い保証）。
type RateLimiter struct {
	config   RateLimiterConfig
	classes  map[RateLimitClass]*limiterSet
	recorder ViolationRecorder

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
// recorderはnil可（メトリクス記録なし）。
func NewRateLimiter(config RateLimiterConfig, recorder ViolationRecorder) *RateLimiter {
	rl := &RateLimiter{
		config: config,
		classes: map[RateLimitClass]*limiterSet{
			ClassGeneral: {limiters: make(map[string]*clientLimiter), limit: config.GeneralRate, burst: config.GeneralBurst},
			ClassAuth:    {limiters: make(map[string]*clientLimiter), limit: config.AuthRate, burst: config.AuthBurst},
			ClassReset:   {limiters: make(map[string]*clientLimiter), limit: config.ResetRate, burst: config.ResetBurst},
		},
		recorder: recorder,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware は指定クラスのレート制限ミドルウェアを返す。
// クライアントはネットワークアドレスで識別する。
func (rl *RateLimiter) Middleware(class RateLimitClass) func(next http.Handler) http.Handler {
	set := rl.classes[class]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.clientKey(r)
			limiter := set.getOrCreate(key)

			if !limiter.Allow() {
				retryAfter := retryAfterSeconds(set.limit)
				WriteErrorResponse(w, model.NewRateLimitError(retryAfter))
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("path", r.URL.Path),
					slog.String("limit_class", string(class)),
				)
				if rl.recorder != nil {
					rl.recorder.RecordRateLimitViolation(string(class))
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCount は指定クラスで現在管理されているエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) LimiterCount(class RateLimitClass) int {
	set := rl.classes[class]
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.limiters)
}

// clientKey はリクエストからクライアント識別キーを導出する。
// 通常は直接のピアアドレス、TrustProxy時はX-Forwarded-Forの先頭エントリ。
func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.config.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if first, _, found := strings.Cut(xff, ","); found || first != "" {
				return strings.TrimSpace(first)
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getOrCreate はクライアントのリミッターを取得または作成する。
// アクセス時刻の更新は読み取りロックを保持したまま行う。ロックを手放してから
// 更新すると、その隙間にcleanupがエントリを削除してレート状態が失われる。
func (s *limiterSet) getOrCreate(key string) *rate.Limiter {
	s.mu.RLock()
	if cl, exists := s.limiters[key]; exists {
		cl.touch()
		s.mu.RUnlock()
		return cl.limiter
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// ダブルチェック
	if cl, exists := s.limiters[key]; exists {
		cl.touch()
		return cl.limiter
	}

	cl := &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
	cl.touch()
	s.limiters[key] = cl

	return cl.limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	for _, set := range rl.classes {
		set.mu.Lock()
		for key, cl := range set.limiters {
			if now.Sub(time.Unix(0, cl.lastAccess.Load())) > ttl {
				delete(set.limiters, key)
			}
		}
		set.mu.Unlock()
	}
}

// retryAfterSeconds は1トークンが補充されるまでの推定秒数を返す。
func retryAfterSeconds(r rate.Limit) int {
	sec := int(math.Ceil(1.0 / float64(r)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
