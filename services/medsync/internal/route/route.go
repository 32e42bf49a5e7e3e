package route

import (
	"net/http"
	"time"

	"medsync/packages/logger"
	"medsync/packages/response"
	"medsync/services/medsync/config"
	_ "medsync/services/medsync/docs"
	"medsync/services/medsync/internal/admin"
	"medsync/services/medsync/internal/csrf"
	"medsync/services/medsync/internal/dashboard"
	"medsync/services/medsync/internal/displayid"
	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/health"
	"medsync/services/medsync/internal/login"
	"medsync/services/medsync/internal/logout"
	"medsync/services/medsync/internal/me"
	"medsync/services/medsync/internal/password"
	"medsync/services/medsync/internal/register"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/storage"
	"medsync/services/medsync/internal/user"
	"medsync/services/medsync/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Mailer sends every mail the service produces. *email.Mailer satisfies it.
type Mailer interface {
	register.Mailer
	password.Mailer
}

// Deps is everything the router needs from main.
type Deps struct {
	Config   *config.AppConfig
	DB       *gorm.DB
	Sessions session.Store
	Pictures storage.Store
	Mailer   Mailer
	Health   *health.Checker
	Logger   *logrus.Logger
	Now      func() time.Time
}

func initRoute(r *gin.Engine, d Deps, manager *session.Manager) {
	conf := d.Config

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	health.RegisterRoutes(r.Group(""), d.Health)

	repo := user.NewUserRepository(d.DB)
	provisioner := user.NewProvisioner(repo, displayid.NewAllocator(d.DB))
	g := guard.New(manager, guard.Config{
		IdleTimeout:      conf.Session.IdleTimeout,
		RotationInterval: conf.Session.RotationInterval,
		Now:              d.Now,
	})

	pages := r.Group("", manager.Middleware(), csrf.Middleware())
	{
		registerOpts := []register.Option{
			register.WithClock(d.Now),
			register.WithOTPExpire(conf.OTP.Expire),
			register.WithLoginURL(conf.Server.BaseURL + "/login"),
		}
		if d.Pictures != nil {
			registerOpts = append(registerOpts, register.WithPictureStore(d.Pictures))
		}
		register.RegisterRoutes(pages, register.NewRegisterService(repo, provisioner, d.Mailer, registerOpts...))

		login.RegisterRoutes(pages, login.NewLoginService(repo), manager, d.Now)
		logout.RegisterRoutes(pages, manager)
		password.RegisterRoutes(pages, password.NewPasswordService(repo, d.Mailer, manager, conf.OTP.Expire), manager)
		dashboard.RegisterRoutes(pages, g)
		admin.RegisterRoutes(pages, admin.NewAdminService(repo, provisioner, manager), g)
		me.RegisterRoutes(pages.Group("/api"), g)
	}
}

// SetupRouter builds the engine with every page and endpoint mounted.
func SetupRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Health == nil {
		d.Health = health.NewChecker().Add("database", health.SQL(d.DB))
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger(d.Logger))

	allowedOrigins := d.Config.Server.AllowedOrigins
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.SetHTMLTemplate(web.Templates())

	manager := session.NewManager(d.Sessions, session.Options{
		CookieName: d.Config.Session.CookieName,
		TTL:        d.Config.Session.TTL,
		Secure:     d.Config.Session.Secure,
	})
	initRoute(r, d, manager)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.ErrorResponse(response.NotFound, "Not found."))
	})
	return r
}
