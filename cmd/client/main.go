package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visa_referral/internal/apiclient"
	"visa_referral/internal/config"
	"visa_referral/internal/logger"
	"visa_referral/internal/mockapi"
	"visa_referral/internal/model"
	"visa_referral/internal/repository"
	"visa_referral/internal/session"
	"visa_referral/internal/storage"
	"visa_referral/internal/utils"

	"go.uber.org/zap"
)

const usage = `usage: client <command> [flags]

commands:
  login -email E -password P
  register -name N -email E -password P [-referral-code C]
  logout
  whoami
  dashboard
  referrals [-status S]
  refer -name N -email E [-country C] [-visa-type T]
  notifications [-unread]
  read -id ID
  read-all
`

type app struct {
	session       *session.Manager
	auth          *apiclient.AuthAPI
	referrals     *apiclient.ReferralAPI
	notifications *apiclient.NotificationAPI
	dashboard     *apiclient.DashboardAPI
	out           io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, closeFn, err := newApp(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to start client", zap.Error(err))
	}
	defer closeFn()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", message(err))
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*app, func(), error) {
	env, known := cfg.Environment()
	if !known {
		lg.Warn("unknown APP_ENV, using development settings", zap.String("app_env", cfg.AppEnv))
	}

	kv, closeFn, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []apiclient.Option{apiclient.WithLogger(lg)}
	if env.UseMockData {
		repos, err := repository.NewMemoryStore(ctx, true)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		d := mockapi.NewDispatcher(repos, utils.NewMockTokenIssuer(24*time.Hour), lg)
		d.MinDelay, d.MaxDelay = cfg.Client.MockMinDelay, cfg.Client.MockMaxDelay
		opts = append(opts, apiclient.WithMock(d))
	}
	client := apiclient.New(env, kv, opts...)

	auth := apiclient.NewAuthAPI(client)
	mgr := session.NewManager(session.NewStore(), kv, auth, lg)
	mgr.Init(ctx)

	return &app{
		session:       mgr,
		auth:          auth,
		referrals:     apiclient.NewReferralAPI(client),
		notifications: apiclient.NewNotificationAPI(client),
		dashboard:     apiclient.NewDashboardAPI(client),
		out:           os.Stdout,
	}, closeFn, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.Client.StorageDriver {
	case "memory":
		return storage.NewMemory(), func() {}, nil
	case "file", "":
		f, err := storage.NewFile(cfg.Client.StoragePath)
		return f, func() {}, err
	case "redis":
		rdb, err := storage.DialRedis(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedis(rdb, cfg.Redis.Prefix), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown CLIENT_STORAGE %q", cfg.Client.StorageDriver)
	}
}

var errNotLoggedIn = errors.New("not logged in")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch cmd {
	case "login":
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := a.session.Login(ctx, *email, *password); err != nil {
			return a.sessionError(err)
		}
		return a.print(a.session.State().User)

	case "register":
		var req model.RegisterRequest
		fs.StringVar(&req.Name, "name", "", "full name")
		fs.StringVar(&req.Email, "email", "", "account email")
		fs.StringVar(&req.Password, "password", "", "account password")
		fs.StringVar(&req.Country, "country", "", "country")
		fs.StringVar(&req.VisaType, "visa-type", "", "visa type")
		fs.StringVar(&req.ReferralCode, "referral-code", "", "referral code")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := a.session.Register(ctx, req); err != nil {
			return a.sessionError(err)
		}
		return a.print(a.session.State().User)

	case "logout":
		a.session.Logout(ctx)
		fmt.Fprintln(a.out, "logged out")
		return nil
	}

	user, err := a.currentUser()
	if err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return a.print(user)

	case "dashboard":
		d, err := a.dashboard.Get(ctx, user.ID)
		if err != nil {
			return err
		}
		return a.print(d)

	case "referrals":
		status := fs.String("status", "", "filter by status")
		if err := fs.Parse(args); err != nil {
			return err
		}
		filters := model.ReferralFilters{ReferrerID: &user.ID}
		if *status != "" {
			s := model.ReferralStatus(*status)
			filters.Status = &s
		}
		refs, err := a.referrals.List(ctx, filters)
		if err != nil {
			return err
		}
		return a.print(refs)

	case "refer":
		req := model.CreateReferralRequest{ReferrerID: user.ID}
		fs.StringVar(&req.ReferredName, "name", "", "referred person's name")
		fs.StringVar(&req.ReferredEmail, "email", "", "referred person's email")
		fs.StringVar(&req.ReferredPhone, "phone", "", "referred person's phone")
		fs.StringVar(&req.ReferredCountry, "country", "", "referred person's country")
		fs.StringVar(&req.VisaType, "visa-type", "", "visa type")
		if err := fs.Parse(args); err != nil {
			return err
		}
		ref, err := a.referrals.Create(ctx, req)
		if err != nil {
			return err
		}
		return a.print(ref)

	case "notifications":
		unread := fs.Bool("unread", false, "only unread")
		if err := fs.Parse(args); err != nil {
			return err
		}
		items, err := a.notifications.ListByUser(ctx, user.ID, *unread)
		if err != nil {
			return err
		}
		return a.print(items)

	case "read":
		id := fs.String("id", "", "notification id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		n, err := a.notifications.MarkAsRead(ctx, *id)
		if err != nil {
			return err
		}
		return a.print(n)

	case "read-all":
		updated, err := a.notifications.MarkAllAsRead(ctx, user.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d notifications marked as read\n", updated)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) currentUser() (*model.User, error) {
	st := a.session.State()
	if !st.IsAuthenticated || st.User == nil {
		return nil, errNotLoggedIn
	}
	return st.User, nil
}

// sessionError prefers the message the session store recorded.
func (a *app) sessionError(err error) error {
	if msg := a.session.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func message(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
