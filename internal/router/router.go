package router

import (
	"time"

	"systmix/internal/config"
	"systmix/internal/connectivity"
	"systmix/internal/handler"
	"systmix/internal/infra"
	"systmix/internal/middleware"
	"systmix/internal/notify"
	"systmix/internal/remote"
	"systmix/internal/repository"
	"systmix/internal/service"
	"systmix/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived pieces built in main and shared with the router:
// the sync engine also runs outside any request (reconnect callback).
type Deps struct {
	DB       *gorm.DB
	Remote   remote.API
	Monitor  *connectivity.Monitor
	Breaker  *infra.CircuitBreaker
	Notifier *notify.Notifier
	Engine   *worker.SyncEngine
	Queue    repository.PendingActionRepository
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← local DB / remote API
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	online := d.Monitor.IsOnline

	// ── Repositories ─────────────────────────────────────────────────────────
	comandaRepo := repository.NewComandaRepository(d.DB)
	produtoRepo := repository.NewProdutoRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	caixaRepo := repository.NewCaixaRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	caixaSvc := service.NewCaixaService(caixaRepo, d.Remote, d.Notifier)
	comandaSvc := service.NewComandaService(comandaRepo, produtoRepo, d.Queue, d.Remote, caixaSvc, d.Notifier, cfg.MaxComandaNumero)
	produtoSvc := service.NewProdutoService(produtoRepo, d.Queue, d.Remote, d.Notifier)
	clienteSvc := service.NewClienteService(clienteRepo, d.Queue, d.Remote, d.Notifier)

	// ── Handlers ─────────────────────────────────────────────────────────────
	comandasH := handler.NewComandasHandler(comandaSvc, online)
	produtosH := handler.NewProdutosHandler(produtoSvc, online)
	clientesH := handler.NewClientesHandler(clienteSvc, online)
	caixaH := handler.NewCaixaHandler(caixaSvc, online)
	syncH := handler.NewSyncHandler(d.Monitor, d.Engine, d.Queue, d.Breaker)
	notificacoesH := handler.NewNotificacoesHandler(d.Notifier)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(d.DB, d.Remote, d.Monitor, d.Breaker))

	v1 := r.Group("/v1")
	{
		comandas := v1.Group("/comandas")
		{
			comandas.GET("/abertas", comandasH.ListarAbertas)
			comandas.GET("/numero/:numero", comandasH.BuscarPorNumero)
			comandas.GET("/:id", comandasH.Buscar)
			comandas.POST("", comandasH.Criar)
			comandas.POST("/:id/itens", comandasH.AdicionarItem)
			comandas.PATCH("/:id/itens/:item_id", comandasH.AtualizarQuantidade)
			comandas.DELETE("/:id/itens/:item_id", comandasH.RemoverItem)
			comandas.POST("/:id/fechar", comandasH.Fechar)
		}

		produtos := v1.Group("/produtos")
		{
			produtos.GET("", produtosH.Listar)
			produtos.POST("", produtosH.Criar)
			produtos.PUT("/:id", produtosH.Atualizar)
			produtos.DELETE("/:id", produtosH.Deletar)
			produtos.GET("/:id/em-uso", produtosH.VerificarUso)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", clientesH.Listar)
			clientes.POST("", clientesH.Criar)
			clientes.PUT("/:id", clientesH.Atualizar)
			clientes.DELETE("/:id", clientesH.Deletar)
		}

		caixa := v1.Group("/caixa")
		{
			caixa.GET("/atual", caixaH.Atual)
			caixa.POST("/abrir", caixaH.Abrir)
			caixa.POST("/fechar", caixaH.Fechar)
		}

		sync := v1.Group("/sync")
		{
			sync.GET("/status", syncH.Status)
			sync.GET("/pendentes", syncH.Pendentes)
			sync.POST("/conectividade", syncH.Conectividade)
			sync.POST("/executar", syncH.Executar)
		}

		v1.GET("/notificacoes", notificacoesH.Listar)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
