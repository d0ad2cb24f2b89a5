package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api/scheduler"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/notify"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/storage"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

const requestTimeout = 30 * time.Second

// Stores groups every collection the api reads and writes
type Stores struct {
	Events        databases.EventDatabase
	Departments   databases.DepartmentDatabase
	Users         databases.UserDatabase
	Availability  databases.AvailabilityDatabase
	Notifications databases.NotificationDatabase
	ActivityLogs  databases.ActivityLogDatabase
	Messages      databases.MessageDatabase
}

// NewStores binds every collection to a database connection
func NewStores(db databases.DatabaseHelper) Stores {
	return Stores{
		Events:        databases.NewEventDatabase(db),
		Departments:   databases.NewDepartmentDatabase(db),
		Users:         databases.NewUserDatabase(db),
		Availability:  databases.NewAvailabilityDatabase(db),
		Notifications: databases.NewNotificationDatabase(db),
		ActivityLogs:  databases.NewActivityLogDatabase(db),
		Messages:      databases.NewMessageDatabase(db),
	}
}

// App stores the router and db connection, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config
	Stores Stores

	Tokens    *api.TokenIssuer
	Auth      *api.Auth
	Hub       *realtime.Hub
	SocketIO  *realtime.SocketIO
	Publisher realtime.Publisher
	Hooks     *workflow.Hooks
	Files     *storage.Local
	Mailer    notify.Mailer
	Scheduler *scheduler.Scheduler
	Metrics   *api.MetricsCollector

	client databases.ClientHelper
	cancel context.CancelFunc
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	loc := a.Config.Timezone
	if loc == nil {
		loc = time.UTC
	}
	if a.Metrics == nil {
		a.Metrics = api.NewMetricsCollector()
	}

	ev := Event{
		DB:    a.Stores.Events,
		DDB:   a.Stores.Departments,
		ADB:   a.Stores.Availability,
		MDB:   a.Stores.Messages,
		Files: a.Files,
		Hooks: a.Hooks,
		Loc:   loc,
		now:   time.Now,
	}
	d := Department{DB: a.Stores.Departments}
	av := Availability{DB: a.Stores.Availability, DDB: a.Stores.Departments}
	u := User{DB: a.Stores.Users, DDB: a.Stores.Departments, LDB: a.Stores.ActivityLogs, Tokens: a.Tokens}
	n := Notification{DB: a.Stores.Notifications, Pub: a.Publisher}
	m := Message{DB: a.Stores.Messages, EDB: a.Stores.Events, Files: a.Files, Pub: a.Publisher}
	l := ActivityLog{DB: a.Stores.ActivityLogs}
	f := File{Files: a.Files}
	c := Cleanup{Scheduler: a.Scheduler}
	mt := Metrics{Collector: a.Metrics}

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware(a.Metrics))

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if a.Hub != nil {
		r.Handle("/ws", a.Auth.Middleware(http.HandlerFunc(a.serveWS)))
	}
	if a.SocketIO != nil {
		r.PathPrefix("/socket.io/").Handler(a.SocketIO)
	}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))

	apiCreate.Handle("/auth/login", http.HandlerFunc(u.LoginHandler)).Methods("POST")

	private := apiCreate.NewRoute().Subrouter()
	private.Use(a.Auth.Middleware)
	elevated := api.RequireElevated

	private.Handle("/users/me", http.HandlerFunc(u.MeHandler)).Methods("GET")
	private.Handle("/users", elevated(http.HandlerFunc(u.UsersHandler))).Methods("GET")
	private.Handle("/users", elevated(http.HandlerFunc(u.CreateUserHandler))).Methods("POST")
	private.Handle("/users/{user_id}", elevated(http.HandlerFunc(u.DeleteUserHandler))).Methods("DELETE")

	private.Handle("/departments", http.HandlerFunc(d.DepartmentsHandler)).Methods("GET")
	private.Handle("/departments", elevated(http.HandlerFunc(d.CreateDepartmentHandler))).Methods("POST")
	private.Handle("/departments/{department_id}", http.HandlerFunc(d.DepartmentByIDHandler)).Methods("GET")
	private.Handle("/departments/{department_id}", elevated(http.HandlerFunc(d.UpdateDepartmentHandler))).Methods("PATCH")
	private.Handle("/departments/{department_id}", elevated(http.HandlerFunc(d.DeleteDepartmentHandler))).Methods("DELETE")
	private.Handle("/departments/{department_id}/requirements", http.HandlerFunc(d.AddRequirementHandler)).Methods("POST")
	private.Handle("/departments/{department_id}/requirements/{requirement_id}", http.HandlerFunc(d.UpdateRequirementHandler)).Methods("PUT")
	private.Handle("/departments/{department_id}/requirements/{requirement_id}", http.HandlerFunc(d.DeleteRequirementHandler)).Methods("DELETE")

	private.Handle("/resource-availability", http.HandlerFunc(av.ResourcesHandler)).Methods("GET")
	private.Handle("/resource-availability", http.HandlerFunc(av.UpsertResourceHandler)).Methods("PUT")
	private.Handle("/resource-availability/{availability_id}", http.HandlerFunc(av.DeleteResourceHandler)).Methods("DELETE")
	private.Handle("/location-availability", http.HandlerFunc(av.LocationsHandler)).Methods("GET")
	private.Handle("/location-availability", elevated(http.HandlerFunc(av.UpsertLocationHandler))).Methods("PUT")
	private.Handle("/location-availability/{availability_id}", elevated(http.HandlerFunc(av.DeleteLocationHandler))).Methods("DELETE")

	private.Handle("/events", http.HandlerFunc(ev.CreateEventHandler)).Methods("POST")
	private.Handle("/events", elevated(http.HandlerFunc(ev.AllEventsHandler))).Methods("GET")
	private.Handle("/events/my", http.HandlerFunc(ev.MyEventsHandler)).Methods("GET")
	private.Handle("/events/tagged", http.HandlerFunc(ev.TaggedEventsHandler)).Methods("GET")
	private.Handle("/events/export", elevated(http.HandlerFunc(ev.ExportEventsHandler))).Methods("GET")
	private.Handle("/events/{event_id}", http.HandlerFunc(ev.EventByIDHandler)).Methods("GET")
	private.Handle("/events/{event_id}", http.HandlerFunc(ev.UpdateEventHandler)).Methods("PUT")
	private.Handle("/events/{event_id}", http.HandlerFunc(ev.DeleteEventHandler)).Methods("DELETE")
	private.Handle("/events/{event_id}/submit", http.HandlerFunc(ev.SubmitEventHandler)).Methods("POST")
	private.Handle("/events/{event_id}/status", elevated(http.HandlerFunc(ev.UpdateStatusHandler))).Methods("PATCH")
	private.Handle("/events/{event_id}/requirements/{requirement_id}/status", http.HandlerFunc(ev.UpdateRequirementStatusHandler)).Methods("PATCH")
	private.Handle("/events/{event_id}/requirements/{requirement_id}/departments", http.HandlerFunc(ev.RetagRequirementHandler)).Methods("PATCH")
	private.Handle("/events/{event_id}/requirements/{requirement_id}/replies", http.HandlerFunc(ev.ReplyHandler)).Methods("POST")
	private.Handle("/events/{event_id}/reports/{slot}", http.HandlerFunc(ev.UploadReportHandler)).Methods("PUT")
	private.Handle("/events/{event_id}/messages", http.HandlerFunc(m.MessagesHandler)).Methods("GET")
	private.Handle("/events/{event_id}/messages", http.HandlerFunc(m.SendMessageHandler)).Methods("POST")

	private.Handle("/notifications", http.HandlerFunc(n.NotificationsHandler)).Methods("GET")
	private.Handle("/notifications/read-all", http.HandlerFunc(n.MarkAllReadHandler)).Methods("PUT")
	private.Handle("/notifications/{notification_id}/read", http.HandlerFunc(n.MarkReadHandler)).Methods("PUT")

	private.Handle("/activity-logs", elevated(http.HandlerFunc(l.ActivityLogsHandler))).Methods("GET")

	private.Handle("/files/{category}/{filename}", http.HandlerFunc(f.FileHandler)).Methods("GET")

	private.Handle("/cleanup", elevated(http.HandlerFunc(c.CleanupHandler))).Methods("POST")
	private.Handle("/metrics", elevated(http.HandlerFunc(mt.MetricsHandler))).Methods("GET")

	return r
}

// Handler wraps the router with rate limiting and CORS
func (a *App) Handler() http.Handler {
	var h http.Handler = a.Router
	if a.Config.RateLimit > 0 {
		h = api.RateLimit(a.Config.RateLimit)(h)
	}
	origins := a.Config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gorillahandlers.ExposedHeaders([]string{"Content-Disposition"}),
		gorillahandlers.AllowCredentials(),
	)(h)
}

// Initialize is invoked by main to connect with the database, create a router
// and start the background jobs
func (a *App) Initialize() error {
	if err := a.Connect(); err != nil {
		return err
	}
	if err := a.Setup(); err != nil {
		return err
	}
	if a.SocketIO != nil {
		a.SocketIO.Serve()
	}
	return a.Scheduler.Start()
}

// Connect opens the database, ensures its indexes and builds the stores
func (a *App) Connect() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With("error", err).Error("failed to create new client")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With("error", err).Error("failed to connect to database")
		return err
	}
	a.client = client
	db := databases.NewDatabase(&a.Config, client)
	if err := databases.EnsureIndexes(ctx, db); err != nil {
		zap.S().With("error", err).Error("failed to create indexes")
		return err
	}
	zap.S().Info("event scheduler api has connected to the database")

	a.Stores = NewStores(db)
	if a.Config.SendGridAPIKey != "" {
		a.Mailer = notify.NewSendGridMailer(a.Config.SendGridAPIKey, "PGB Event Scheduler", a.Config.MailFrom)
	}
	return nil
}

// Setup wires tokens, realtime, hooks, storage and the scheduler around a.Stores
// and builds the router. Initialize calls it after connecting; tests call it
// directly with in-memory stores.
func (a *App) Setup() error {
	api.SetQueryTimeout(a.Config.QueryTimeout)

	tokens, err := api.NewTokenIssuer(a.Config.JWTSecret, a.Config.TokenTTL)
	if err != nil {
		return err
	}
	a.Tokens = tokens

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Auth = api.NewAuth(ctx, a.Stores.Users, tokens)

	if a.Publisher == nil {
		a.Hub = realtime.NewHub(a.Config.AllowedOrigins)
		a.Hub.CanJoin = a.canJoin
		a.SocketIO = realtime.NewSocketIO(a.socketIdentity, a.Config.AllowedOrigins)
		a.SocketIO.CanJoin = a.canJoin
		a.Publisher = realtime.Fanout{a.Hub, a.SocketIO}
	}

	if a.Files == nil {
		files, err := storage.NewLocal(a.Config.UploadDir)
		if err != nil {
			return err
		}
		a.Files = files
	}

	a.Hooks = &workflow.Hooks{}
	a.Hooks.Register("activity-log", notify.ActivityLog{DB: a.Stores.ActivityLogs}.Hook)
	a.Hooks.Register("notifications", notify.Notifications{DB: a.Stores.Notifications, Pub: a.Publisher}.Hook)
	a.Hooks.Register("realtime", notify.Realtime{Pub: a.Publisher}.Hook)
	if a.Mailer != nil {
		a.Hooks.Register("lifecycle-email", notify.LifecycleEmails{Mailer: a.Mailer, BaseURL: a.Config.BaseURL}.Hook)
	}

	a.Scheduler = scheduler.NewScheduler(a.Stores.Events, a.Stores.Availability, a.Hooks, a.Config.Timezone)
	a.Router = a.New()
	return nil
}

// Close stops background work and releases the database connection
func (a *App) Close(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.SocketIO != nil {
		if err := a.SocketIO.Close(); err != nil {
			zap.S().Warnw("failed to close socket.io server", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

func identityOf(u *models.User) realtime.Identity {
	return realtime.Identity{UserID: u.ID.Hex(), Department: u.Department, Elevated: u.IsElevated()}
}

func (a *App) serveWS(w http.ResponseWriter, r *http.Request) {
	u, _ := api.UserFromContext(r.Context())
	a.Hub.ServeWS(w, r, identityOf(u))
}

func (a *App) socketIdentity(r *http.Request, token string) (realtime.Identity, error) {
	u, err := a.Auth.IdentifyToken(r, token)
	if err != nil {
		return realtime.Identity{}, err
	}
	return identityOf(u), nil
}

// canJoin admits a connection to an event room when its user may view the event
func (a *App) canJoin(id realtime.Identity, room string) bool {
	if !realtime.IsEventRoom(room) {
		return false
	}
	if id.Elevated {
		return true
	}
	eventID, err := primitive.ObjectIDFromHex(room[len(realtime.EventRoom("")):])
	if err != nil {
		return false
	}
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	ev, err := a.Stores.Events.FindOne(ctx, bson.M{"_id": eventID})
	if err != nil {
		return false
	}
	return ev.CreatedBy.Hex() == id.UserID || (id.Department != "" && ev.IsTagged(id.Department))
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
