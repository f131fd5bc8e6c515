package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/helper"
	"github.com/relloyd/bqload/logger"
)

const (
	urlContext4Health     = "/health"
	urlContext4Stop       = "/stop"
	urlContext4Stats      = "/stats"
	urlContext4Descriptor = "/loads/descriptor"
	urlContext4Trigger    = "/loads/trigger"
)

// WebServerConfig runs loads on request.
// Trigger file loads are only available when ProjectID and ConfigFile are set.
type WebServerConfig struct {
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	Scheme                    string `errorTxt:"scheme" mandatory:"no"`
	Addr                      net.IP `errorTxt:"address" mandatory:"no"`
	Port                      int    `errorTxt:"port" mandatory:"yes"`
	ProjectID                 string
	ConfigFile                string
	DataSet                   string
	Location                  string
	S3Region                  string
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
}

func RunWebServer(web *WebServerConfig) error {
	// Setup logging.
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	log := logger.NewLogger(constants.DefaultServiceName, web.LogLevel, web.StackDumpOnPanic)
	// Check if we have valid input params.
	err := helper.ValidateStructIsPopulated(web)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stores, closeStores := newStoreRegistry(ctx, web.S3Region, log)
	defer closeStores()
	ls := &loadServer{
		ctx: ctx,
		descriptors: &descriptorLoader{
			stores:         stores,
			location:       web.Location,
			statsFrequency: web.StatsDumpFrequencySeconds,
			log:            log,
		},
		log: log,
	}
	if web.ProjectID != "" && web.ConfigFile != "" {
		wh, err := newWarehouse(ctx, web.ProjectID, web.Location)
		if err != nil {
			return err
		}
		defer closeWarehouse(log, wh)
		ls.triggers = &triggerLoader{
			stores:         stores,
			warehouse:      wh,
			projectID:      web.ProjectID,
			configFile:     web.ConfigFile,
			defaultDataSet: web.DataSet,
			statsFrequency: web.StatsDumpFrequencySeconds,
			log:            log,
		}
	} else {
		log.Info("trigger file loads disabled: supply a project and config file to enable them")
	}
	// Start the web server.
	srv, chanStopServer := runServer(log, web, ls)
	// Block & wait for completion.
	return waitForServer(log, srv, chanStopServer, cancel)
}

// newRouter creates the routes served by the web server.
func newRouter(log logger.Logger, ls *loadServer, chanStopServer chan string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(urlContext4Stop, GetHandlerStopServer(log, chanStopServer))
	r.Path(urlContext4Health).HandlerFunc(GetHandlerHealth(log))
	r.Path(urlContext4Stats).Methods(http.MethodGet).HandlerFunc(GetHandlerStats(log, ls))
	r.Path(urlContext4Descriptor).Methods(http.MethodPost).HandlerFunc(GetHandlerDescriptorLoad(log, ls))
	r.Path(urlContext4Trigger).Methods(http.MethodPost).HandlerFunc(GetHandlerTriggerLoad(log, ls))
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
func runServer(log logger.Logger, web *WebServerConfig, ls *loadServer) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	// Configure HTTP server.
	srv := &http.Server{
		Addr:         fmt.Sprintf("%v:%v", addrOrEmpty(web.Addr), web.Port),
		WriteTimeout: time.Minute * 60, // loads run inside the request.
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, ls, chanStopServer), // supply our instance of gorilla/mux.
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), addrOrEmpty(web.Addr), web.Port))
	return srv, chanStopServer
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string, cancelLoads context.CancelFunc) error {
	// Block & wait for shutdown signals.
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt) // request signals be sent to chanOS.
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	// Stop any run in progress between tasks.
	cancelLoads()
	wait := time.Second * 15                                       // duration
	ctx, cancel := context.WithTimeout(context.Background(), wait) // create a timeout to wait for.
	defer cancel()                                                 // cancel the timeout.
	return srv.Shutdown(ctx)                                       // Doesn't block if no connections, but will otherwise wait until the timeout deadline.
}

func addrOrEmpty(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
