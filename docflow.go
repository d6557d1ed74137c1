package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ephraimraxy/docflow/api"
	"github.com/ephraimraxy/docflow/core"
	"github.com/ephraimraxy/docflow/filestore"
	"github.com/ephraimraxy/docflow/memdb"
	"github.com/ephraimraxy/docflow/sqldb"
	"github.com/ephraimraxy/docflow/sqldb/mysql"
	"github.com/ephraimraxy/docflow/sqldb/sqlite3"
	"github.com/ephraimraxy/docflow/util"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh/terminal"
)

const sweepInterval = 15 * time.Minute

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	flag.StringVar(&dbArg, "db", "sqlite3:docflow.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl, or \"mem\" for a volatile in-memory store")
	var configFile = flag.String("config", "", "read flag defaults from this ini `file`")
	var devLog = flag.Bool("dev-log", false, "log human-readable lines instead of JSON")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")
	var uploadDir = flag.String("uploads", "uploads", "store version files below this `directory`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", "sqlite3:docflow.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl") // copied from above
	var initInsertUser = initFlags.Bool("insert-user", false, "creates the given user, prompting for a password")
	var initInsertOffice = initFlags.Bool("insert-office", false, "creates the given office, prompting for a password")
	var initMakeAdmin = initFlags.Bool("make-admin", false, "gives the ADMIN role to the given user")
	var email = initFlags.String("email", "", "specifies a user by `email`")
	var officeCode = initFlags.String("office-code", "", "specifies an office login `code`")
	var officeName = initFlags.String("office-name", "", "specifies an office display `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// config file overrides flag defaults, command line overrides both

	if *configFile != "" {
		values, err := util.Ini(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read config file: %v\n", err)
			return
		}
		var set = map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		for name, value := range values {
			if !set[name] {
				flag.Set(name, value)
			}
		}
	}

	// logger

	var logger *zap.Logger
	var err error
	if *devLog {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		return
	}
	defer logger.Sync()

	// stores

	var db = &core.CoreDB{}
	var sessionStore scs.Store
	var sqlDB *sql.DB

	if dbArg == "mem" {
		memdb.New().Wire(db)
		sessionStore = memstore.New()
		logger.Info("using in-memory store, all data is volatile")
	} else {
		dbURL, err := dburl.Parse(dbArg)
		if err != nil {
			logger.Error("could not parse database url", zap.Error(err))
			return
		}

		sqlDB, err = sql.Open(dbURL.Driver, dbURL.DSN)
		if err != nil {
			logger.Error("could not open sql database", zap.Error(err))
			return
		}

		if err = sqlDB.Ping(); err != nil {
			logger.Error("could not ping sql database", zap.Error(err))
			return
		}

		logger.Info("using database", zap.String("url", dbURL.String()))

		switch dbURL.Driver {
		case "mysql":
			sessionStore = mysql.NewSessionStore(sqlDB)
		case "sqlite3":
			sessionStore = sqlite3.NewSessionStore(sqlDB)
		default:
			logger.Error("unknown database backend", zap.String("driver", dbURL.Driver))
			return
		}

		var workflowDB = sqldb.NewWorkflowDB(sqlDB)
		db.AuditDB = sqldb.NewAuditDB(sqlDB)
		db.CommentDB = sqldb.NewCommentDB(sqlDB)
		db.DepartmentDB = sqldb.NewDepartmentDB(sqlDB)
		db.DocumentDB = sqldb.NewDocumentDB(sqlDB)
		db.MessageDB = sqldb.NewMessageDB(sqlDB)
		db.NotificationDB = sqldb.NewNotificationDB(sqlDB)
		db.OfficeDB = sqldb.NewOfficeDB(sqlDB)
		db.TaskDB = sqldb.NewTaskDB(sqlDB)
		db.TransitionDB = workflowDB
		db.UserDB = sqldb.NewUserDB(sqlDB)
		db.VersionDB = sqldb.NewVersionDB(sqlDB)
		db.WorkflowDB = workflowDB

		defer func() {
			logger.Info("closing database")
			sqlDB.Close()
		}()
	}

	db.Init(sessionStore, "", logger)
	db.Uploads = filestore.New(*uploadDir)

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsertUser:
			insertUser(db, *email)
		case *initInsertOffice:
			insertOffice(db, *officeCode, *officeName)
		case *initMakeAdmin:
			makeAdmin(db, *email)
		default:
			initFlags.Usage()
		}
		return
	}

	listen(db, logger, *listenAddr)
}

func readPassword(prompt string) (string, bool) {

	fmt.Print(prompt)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading password: %v\n", err)
		return "", false
	}

	fmt.Print("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading password: %v\n", err)
		return "", false
	}

	if !bytes.Equal(pass1, pass2) {
		fmt.Fprintln(os.Stderr, "passwords don't match")
		return "", false
	}

	return string(pass1), true
}

func insertUser(db *core.CoreDB, email string) {

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		return
	}

	password, ok := readPassword(fmt.Sprintf("password for user %s: ", email))
	if !ok {
		return
	}

	var u = &core.User{
		Email:     email,
		Roles:     core.RoleSet{core.RoleViewer},
		TsCreated: time.Now().Unix(),
	}

	if err := db.UserDB.InsertUser(u); err != nil {
		fmt.Fprintf(os.Stderr, "error creating user %s: %v\n", email, err)
		return
	}

	if err := db.SetUserPassword(u.ID, password); err != nil {
		fmt.Fprintf(os.Stderr, "error setting password: %v\n", err)
		return
	}

	fmt.Printf("created user %s with id %s\n", email, u.ID)
}

func insertOffice(db *core.CoreDB, code, name string) {

	if code == "" {
		fmt.Fprintln(os.Stderr, "-office-code is required")
		return
	}
	if name == "" {
		name = code
	}

	password, ok := readPassword(fmt.Sprintf("password for office %s: ", code))
	if !ok {
		return
	}

	// bootstrapping happens before any admin account exists
	var admin = &core.User{Roles: core.RoleSet{core.RoleAdmin}}
	office, err := db.CreateOffice(admin, code, name, code, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating office %s: %v\n", code, err)
		return
	}

	fmt.Printf("created office %s with id %s\n", code, office.ID)
}

func makeAdmin(db *core.CoreDB, email string) {

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		return
	}

	u, err := db.UserDB.GetUserByEmail(email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting user %s: %v\n", email, err)
		return
	}

	u.Roles = u.Roles.Add(core.RoleAdmin)
	if err := db.UserDB.UpdateUser(u); err != nil {
		fmt.Fprintf(os.Stderr, "error updating user %s: %v\n", email, err)
		return
	}

	fmt.Printf("gave admin role to %s\n", email)
}

func listen(db *core.CoreDB, logger *zap.Logger, addr string) {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go db.SweepOfficeSessions(ctx, sweepInterval)

	var srv = &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(db, logger),
	}

	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	var sigint = make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigint:
		logger.Info("received interrupt")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
