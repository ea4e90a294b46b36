package cmd

import (
	"context"
	"os"
	"time"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	"github.com/l0lsec/PodInsights/core/database"
	domainApp "github.com/l0lsec/PodInsights/domains/app"
	domainArticle "github.com/l0lsec/PodInsights/domains/article"
	domainCredential "github.com/l0lsec/PodInsights/domains/credential"
	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	domainFeed "github.com/l0lsec/PodInsights/domains/feed"
	"github.com/l0lsec/PodInsights/domains/health"
	domainImage "github.com/l0lsec/PodInsights/domains/image"
	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	domainSocial "github.com/l0lsec/PodInsights/domains/socialpost"
	domainStandalone "github.com/l0lsec/PodInsights/domains/standalone"
	domainTicket "github.com/l0lsec/PodInsights/domains/ticket"
	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
	"github.com/l0lsec/PodInsights/infrastructure/linkedin"
	"github.com/l0lsec/PodInsights/infrastructure/threads"
	"github.com/l0lsec/PodInsights/infrastructure/valkey"
	"github.com/l0lsec/PodInsights/integrations/ai"
	"github.com/l0lsec/PodInsights/integrations/jira"
	"github.com/l0lsec/PodInsights/integrations/stockimages"
	"github.com/l0lsec/PodInsights/pkg/crypto"
	"github.com/l0lsec/PodInsights/pkg/procworker"
	"github.com/l0lsec/PodInsights/pkg/utils"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/scheduler/application"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/publish"
	schedRepo "github.com/l0lsec/PodInsights/scheduler/repository"
	"github.com/l0lsec/PodInsights/ui/websocket"
	"github.com/l0lsec/PodInsights/usecase"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Usecase
	appUsecase        domainApp.IAppUsecase
	feedUsecase       domainFeed.IFeedUsecase
	episodeUsecase    domainEpisode.IEpisodeUsecase
	articleUsecase    domainArticle.IArticleUsecase
	socialPostUsecase domainSocial.ISocialPostUsecase
	standaloneUsecase domainStandalone.IStandaloneUsecase
	urlSourceUsecase  domainURL.IURLSourceUsecase
	imageUsecase      domainImage.IImageUsecase
	ticketUsecase     domainTicket.ITicketUsecase
	credentialUsecase domainCredential.ICredentialUsecase
	schedulerUsecase  domainScheduler.ISchedulerUsecase
	healthUsecase     health.IHealthUsecase

	// Scheduler worker
	schedulerWorker *application.SchedulerWorker
	workerCancel    context.CancelFunc

	// Distributed websocket broadcast
	vkClient *valkey.Client
	serverID string
)

// Flag values live here until initApp loads the configuration; binding them
// straight into coreconfig.Global would dereference a nil pointer at init.
var (
	flagAppPort        string
	flagAppDebug       bool
	flagBasicAuth      []string
	flagBasePath       string
	flagTrustedProxies []string
	flagDBDriver       string
	flagDBName         string
	flagTickSeconds    int
	flagTimezone       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Turn podcast episodes into scheduled social posts",
	Long: `PodInsights ingests podcast feeds, turns episodes into articles and
social posts, and drains a slot-based queue onto LinkedIn and Threads.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize flags first, before any subcommands are added
	initFlags()

	// Then initialize other components
	cobra.OnInitialize(initApp)
}

func initFlags() {
	// Application flags
	rootCmd.PersistentFlags().StringVarP(
		&flagAppPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagAppDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&flagBasicAuth,
		"basic-auth", "b",
		nil,
		"basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagBasePath,
		"base-path", "",
		"",
		`base path for subpath deployment --base-path <string> | example: --base-path="/podinsights"`,
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&flagTrustedProxies,
		"trusted-proxies", "",
		nil,
		`trusted proxy IP ranges for reverse proxy deployments --trusted-proxies <string> | example: --trusted-proxies="10.0.0.0/8,172.16.0.0/12"`,
	)

	// Database flags
	rootCmd.PersistentFlags().StringVarP(
		&flagDBDriver,
		"db-driver", "",
		"",
		`database driver, sqlite or postgres --db-driver <string> | example: --db-driver="postgres"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagDBName,
		"db-name", "",
		"",
		`database file path for sqlite or database name for postgres --db-name <string> | example: --db-name="storages/podinsights.db"`,
	)

	// Scheduler flags
	rootCmd.PersistentFlags().IntVarP(
		&flagTickSeconds,
		"tick-seconds", "",
		0,
		"scheduler tick interval in seconds --tick-seconds <number> | example: --tick-seconds=30 (default: 60)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagTimezone,
		"timezone", "",
		"",
		`IANA timezone the posting slots materialize in --timezone <string> | example: --timezone="America/New_York"`,
	)
}

func applyFlagOverrides(cfg *coreconfig.Config) {
	if flagAppPort != "" {
		cfg.App.Port = flagAppPort
	}
	if flagAppDebug {
		cfg.App.Debug = true
	}
	if len(flagBasicAuth) > 0 {
		cfg.App.BasicAuth = flagBasicAuth
	}
	if flagBasePath != "" {
		cfg.App.BasePath = flagBasePath
	}
	if len(flagTrustedProxies) > 0 {
		cfg.App.TrustedProxies = flagTrustedProxies
	}
	if flagDBDriver != "" {
		cfg.Database.Driver = flagDBDriver
	}
	if flagDBName != "" {
		cfg.Database.Name = flagDBName
	}
	if flagTickSeconds > 0 {
		cfg.Scheduler.TickSeconds = flagTickSeconds
	}
	if flagTimezone != "" {
		cfg.Scheduler.Timezone = flagTimezone
	}
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlagOverrides(cfg)

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debugf("[CONFIG] Active settings: %v", coreconfig.GetAllSettings())
	}

	// Preparing folders if not exist
	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics); err != nil {
		logrus.Errorln(err)
	}
	if err := utils.EnsureStorageDirectories(); err != nil {
		logrus.Errorln(err)
	}

	crypto.SetEncryptionKey(cfg.Security.SecretKey)

	ctx := context.Background()

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}

	contentRepo := repository.NewContentGormRepository(db)
	if err := contentRepo.Init(ctx); err != nil {
		logrus.Fatalf("Failed to migrate content tables: %v", err)
	}
	queueRepo := schedRepo.NewSchedulerGormRepository(db)
	if err := queueRepo.Init(ctx); err != nil {
		logrus.Fatalf("Failed to migrate scheduler tables: %v", err)
	}

	// Valkey is optional; without it the websocket hub stays single-node.
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("[APP] Valkey unavailable, websocket broadcast stays local")
			vkClient = nil
		}
	}
	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)

	provider, err := ai.FromConfig(cfg)
	if err != nil {
		logrus.WithError(err).Warn("[APP] AI provider disabled")
	}

	linkedinOAuth := linkedin.NewOAuthClient(cfg.LinkedIn)
	threadsOAuth := threads.NewOAuthClient(cfg.Threads)
	publishers := map[string]publish.Publisher{
		"linkedin": linkedin.NewPublisher(),
		"threads":  threads.NewPublisher(),
	}

	// 1. Credential + content usecases
	credentialUsecase = usecase.NewCredentialService(db, linkedinOAuth, threadsOAuth)
	feedUsecase = usecase.NewFeedService(contentRepo)
	episodeUsecase = usecase.NewEpisodeService(contentRepo, provider)
	articleUsecase = usecase.NewArticleService(contentRepo, provider)
	socialPostUsecase = usecase.NewSocialPostService(contentRepo, provider)
	urlSourceUsecase = usecase.NewURLSourceService(contentRepo)
	standaloneUsecase = usecase.NewStandaloneService(contentRepo, provider, urlSourceUsecase)
	imageUsecase = usecase.NewImageService(contentRepo, stockimages.NewSearcher(cfg.StockImages))
	ticketUsecase = usecase.NewTicketService(contentRepo, jira.NewClient(cfg.Jira))

	// 2. Scheduling stack (needs credentials and the content resolver)
	clock := common.NewSystemClock(cfg.Scheduler.Timezone)
	gate := application.NewQueueGate()
	allocator := application.NewSlotAllocator(queueRepo, clock)
	materializer := application.NewQueueMaterializer(queueRepo, allocator)
	schedulerWorker = application.NewSchedulerWorker(
		queueRepo,
		usecase.NewContentResolver(contentRepo),
		credentialUsecase,
		publishers,
		materializer,
		gate,
		clock,
		time.Duration(cfg.Scheduler.TickSeconds)*time.Second,
		cfg.Scheduler.MaxErrorSize,
	)
	schedulerWorker.SetEventEmitter(broadcastEvent)
	schedulerUsecase = usecase.NewSchedulerService(queueRepo, allocator, materializer, schedulerWorker, gate, clock, broadcastEvent)

	// 3. Post-initialization
	appUsecase = usecase.NewAppService(schedulerWorker)
	healthUsecase = usecase.NewHealthService(credentialUsecase, provider)
	healthUsecase.StartPeriodicChecks(ctx)

	// Warm the processing pool so app uptime counts from boot.
	procworker.GetGlobalPool()

	if err := schedulerUsecase.EnsureDefaults(ctx); err != nil {
		logrus.WithError(err).Error("[APP] Failed to seed default posting slots")
	}

	if cfg.Scheduler.Enabled {
		workerCtx, cancel := context.WithCancel(context.Background())
		workerCancel = cancel
		go schedulerWorker.Run(workerCtx)
	} else {
		logrus.Warn("[APP] Scheduler worker disabled, queued posts will not publish")
	}
}

// broadcastEvent fans scheduler lifecycle events out to websocket clients and
// keeps the health board in sync with publish outcomes. The channel send is
// non-blocking because only the rest command drains the hub.
func broadcastEvent(code, message string, result any) {
	if healthUsecase != nil {
		if payload, ok := result.(map[string]string); ok && payload["platform"] != "" {
			switch code {
			case "POST_PUBLISHED":
				healthUsecase.ReportSuccess(context.Background(), health.EntityCredential, payload["platform"])
			case "POST_FAILED":
				healthUsecase.ReportFailure(context.Background(), health.EntityCredential, payload["platform"], message)
			}
		}
	}

	select {
	case websocket.Broadcast <- websocket.BroadcastMessage{Code: code, Message: message, Result: result}:
	default:
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the background services and database
// connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if workerCancel != nil {
		workerCancel()
	}

	procworker.StopGlobalPool()

	if vkClient != nil {
		vkClient.Close()
	}

	if sqlDB, err := database.GetSQLDB(); err == nil {
		_ = sqlDB.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
