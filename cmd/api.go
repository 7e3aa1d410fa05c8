package cmd

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/Laisky/amc-site/internal/web"
	"github.com/Laisky/amc-site/internal/web/auth"
	contentCtl "github.com/Laisky/amc-site/internal/web/content/controller"
	"github.com/Laisky/amc-site/internal/web/content/dao"
	"github.com/Laisky/amc-site/internal/web/content/service"
	uploadCtl "github.com/Laisky/amc-site/internal/web/upload/controller"
	uploadSvc "github.com/Laisky/amc-site/internal/web/upload/service"
	idp "github.com/Laisky/amc-site/library/auth"
	"github.com/Laisky/amc-site/library/config"
	"github.com/Laisky/amc-site/library/db/firestore"
	"github.com/Laisky/amc-site/library/db/mongo"
	"github.com/Laisky/amc-site/library/jwt"
	"github.com/Laisky/amc-site/library/log"
	"github.com/Laisky/amc-site/library/metrics"
	"github.com/Laisky/amc-site/library/storage"
	"github.com/Laisky/amc-site/library/throttle"
)

const (
	dbTypeFirestore = "firestore"
	dbTypeMongo     = "mongo"
	dbTypeMemory    = "memory"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `serve the public site API, the admin API and the frontend build`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runAPI(ctx); err != nil {
			log.Logger.Panic("run api", zap.Error(err))
		}
	},
}

func init() {
	apiCMD.Flags().Bool("metrics", true, "expose prometheus metrics")
	rootCMD.AddCommand(apiCMD)
}

func runAPI(ctx context.Context) error {
	logger := log.Logger.Named("api")

	store, err := openStore(ctx, logger)
	if err != nil {
		return errors.Wrap(err, "open content store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("close content store", zap.Error(err))
		}
	}()

	maxFileBytes := int64(gconfig.Shared.GetInt("settings.storage.max_file_bytes"))
	if maxFileBytes <= 0 {
		maxFileBytes = uploadSvc.DefaultMaxFileBytes
	}
	uploader, err := newUploader(logger, maxFileBytes)
	if err != nil {
		return errors.Wrap(err, "new uploader")
	}

	contentSvc := service.New(logger.Named("content"), store, service.WithAttachmentRemover(uploader))

	authCtl, err := newAuthController(ctx, logger, store)
	if err != nil {
		return errors.Wrap(err, "new auth controller")
	}

	opt := web.Options{
		Content:        contentCtl.New(contentSvc, web.LoadSiteConfig(logger)),
		Auth:           authCtl,
		AllowedOrigins: gconfig.Shared.GetStringSlice("settings.web.allowed_origins"),
		FrontendDist:   config.ResolvePath(gconfig.Shared.GetString("settings.web.frontend_dist")),
		Metrics:        gconfig.Shared.GetBool("metrics"),
	}
	if uploader.Enabled() {
		opt.Upload = uploadCtl.New(uploader, maxFileBytes)
	}
	if opt.Metrics {
		metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	}

	server, err := web.NewServer(logger, opt)
	if err != nil {
		return errors.Wrap(err, "new server")
	}

	return web.RunServer(ctx, logger, gconfig.Shared.GetString("listen"), server)
}

// openStore connects the document store named by `settings.db.type`.
func openStore(ctx context.Context, logger glog.Logger) (dao.Store, error) {
	dbType := strings.ToLower(strings.TrimSpace(gconfig.Shared.GetString("settings.db.type")))
	if dbType == "" {
		dbType = dbTypeFirestore
	}
	logger = logger.With(zap.String("db_type", dbType))

	switch dbType {
	case dbTypeFirestore:
		var opts []option.ClientOption
		if cred := gconfig.Shared.GetString("settings.db.firestore.credential_file"); cred != "" {
			opts = append(opts, option.WithCredentialsFile(config.ResolvePath(cred)))
		}

		db, err := firestore.NewDB(ctx, gconfig.Shared.GetString("settings.db.firestore.project_id"), opts...)
		if err != nil {
			return nil, errors.Wrap(err, "connect firestore")
		}

		logger.Info("connected to firestore", zap.String("project", db.ProjectID()))
		return dao.NewFirestoreStore(logger.Named("firestore"), db), nil
	case dbTypeMongo:
		db, err := mongo.NewDB(ctx, mongo.DialInfo{
			Addr:   gconfig.Shared.GetString("settings.db.mongo.addr"),
			DBName: gconfig.Shared.GetString("settings.db.mongo.db"),
			User:   gconfig.Shared.GetString("settings.db.mongo.user"),
			Pwd:    gconfig.Shared.GetString("settings.db.mongo.pwd"),
			AuthDB: gconfig.Shared.GetString("settings.db.mongo.auth_db"),
		})
		if err != nil {
			return nil, errors.Wrap(err, "connect mongo")
		}

		return dao.NewMongoStore(logger.Named("mongo"), db), nil
	case dbTypeMemory:
		logger.Warn("using in-memory content store, nothing is persisted")
		return dao.NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("unknown db type %q", dbType)
	}
}

func storageConfig() storage.Config {
	return storage.Config{
		AccountID:       gconfig.Shared.GetString("settings.storage.account_id"),
		Endpoint:        gconfig.Shared.GetString("settings.storage.endpoint"),
		AccessKeyID:     gconfig.Shared.GetString("settings.storage.access_key_id"),
		SecretAccessKey: gconfig.Shared.GetString("settings.storage.secret_access_key"),
		Bucket:          gconfig.Shared.GetString("settings.storage.bucket"),
		PublicBaseURL:   gconfig.Shared.GetString("settings.storage.public_base_url"),
		Insecure:        gconfig.Shared.GetBool("settings.storage.insecure"),
	}
}

// newUploader returns a disabled uploader when storage is not configured.
func newUploader(logger glog.Logger, maxFileBytes int64) (*uploadSvc.Uploader, error) {
	cfg := storageConfig()
	if !cfg.Enabled() {
		logger.Warn("object storage is not configured, uploads disabled")
		return uploadSvc.NewUploader(logger.Named("uploader"), nil, maxFileBytes), nil
	}

	cli, err := storage.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "new storage client")
	}

	return uploadSvc.NewUploader(logger.Named("uploader"), cli, maxFileBytes), nil
}

func newAuthController(ctx context.Context, logger glog.Logger, store dao.Store) (*auth.Controller, error) {
	signer, err := jwt.New([]byte(gconfig.Shared.GetString("settings.secret")))
	if err != nil {
		return nil, errors.Wrap(err, "new jwt")
	}

	var verifier idp.PasswordVerifier
	if apiKey := strings.TrimSpace(gconfig.Shared.GetString("settings.auth.api_key")); apiKey != "" {
		toolkit, err := idp.NewIdentityToolkit(ctx, apiKey)
		if err != nil {
			return nil, errors.Wrap(err, "new identity toolkit")
		}
		verifier = toolkit
	} else {
		logger.Warn("settings.auth.api_key is empty, admin login disabled")
	}

	limiter, err := throttle.NewKeyedThrottle(throttle.KeyedThrottleCfg{
		NPerSec: 0.2,
		Burst:   5,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new login throttle")
	}

	opts := []auth.Option{auth.WithLoginThrottle(limiter)}
	if hours := gconfig.Shared.GetInt("settings.auth.session_ttl_hours"); hours > 0 {
		opts = append(opts, auth.WithSessionTTL(time.Duration(hours)*time.Hour))
	}

	svc, err := auth.NewService(logger.Named("auth"), store, verifier, signer, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "new auth service")
	}

	return auth.NewController(svc, !gconfig.Shared.GetBool("debug")), nil
}
