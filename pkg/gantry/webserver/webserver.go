/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package webserver

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io/ioutil"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"golang.org/x/net/trace"

	"github.com/gantryviz/gantry/pkg/gantry/colormap"
	"github.com/gantryviz/gantry/pkg/gantry/common"
	"github.com/gantryviz/gantry/pkg/gantry/ingress"
	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/queries"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

const (
	debugListKeysTemplateFile = "debuglistkeys.html"
	debugConfigTemplateFile   = "debugconfig.html"
	debugTemplateFile         = "debug.html"
	indexTemplateFile         = "index.html"
)

type WebConfig struct {
	BindAddress     string
	Port            int
	WebFilesPath    string
	DefaultLookback string
	DefaultPipeline string
	TitleParameter  string
	MaxLookback     time.Duration
	ConfigYaml      string
}

// This is not going to change and we don't want to pass it to every function
// so use a static for now
var webFiles string

// Needed to use this to allow for graceful shutdown which is required for profiling
type Server struct {
	mux *http.ServeMux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func logWebError(err error, note string, r *http.Request, w http.ResponseWriter) {
	message := fmt.Sprintf("Error rendering url: %q.  Note: %v. Error: %v", r.URL, note, err)
	glog.ErrorDepth(1, message)
	http.Error(w, message, http.StatusInternalServerError)
}

// Example input: r.URL=/webfiles/gantry.css
// Returns file: <webFiles>/gantry.css
func webFileHandler(fs *afero.Afero) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fixedUrl := strings.TrimPrefix(fmt.Sprint(r.URL), "/webfiles")
		fullPath := path.Join(webFiles, fixedUrl)
		data, err := readWebfile(fullPath, fs)
		if err != nil {
			logWebError(err, "Error reading web file: "+fixedUrl, r, w)
			return
		}
		w.Header().Set("content-type", mime.TypeByExtension(filepath.Ext(fullPath)))
		_, err = w.Write(data)
		if err != nil {
			logWebError(err, "Error writing web file: "+fixedUrl, r, w)
			return
		}
		glog.V(common.LogLevelDebug).Infof("webFileHandler successfully returned file %v for %v", fixedUrl, r.URL)
	}
}

// backupHandler streams a download of a backup of the database.
// It is a simple HTTP translation of the Badger DB's built-in online backup function.
// If the optional `since` query parameter is provided, the backup will only include versions since the version provided.
func backupHandler(db badgerwrap.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sinceStr := r.URL.Query().Get("since")
		if sinceStr == "" {
			sinceStr = "0"
		}
		since, err := strconv.ParseUint(sinceStr, 10, 64)
		if err != nil {
			logWebError(err, "Error parsing 'since' parameter. Must be expressed as a positive integer.", r, w)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gantry-%d.bak", since))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Transfer-Encoding", "chunked")

		_, err = db.Backup(w, since)
		if err != nil {
			logWebError(err, "Error writing backup", r, w)
			return
		}

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

func queryHandler(tables typed.Tables, colorToId map[string]int, maxLookBack time.Duration) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("content-type", "application/json")

		queryName := request.URL.Query().Get(queries.QueryParam)
		data, err := queries.RunQuery(queryName, request.URL.Query(), tables, colorToId, maxLookBack, getRequestId(request.Context()))
		if err != nil {
			logWebError(err, "Failed to run query", request, writer)
			return
		}

		writer.Write(data)
	}
}

// ingestRequest is the document POSTed to /data/ingest for one finished
// build.  StepsHtml is the pipeline steps page.  Parameters are used as-is
// when present, otherwise they are scraped from BuildHtml.  A caller that
// already assembled a build document can send it in Build instead.
type ingestRequest struct {
	JobName          string            `json:"jobName"`
	BuildId          string            `json:"buildId"`
	BuildStartTimeMs int64             `json:"buildStartTimeMs"`
	Parameters       map[string]string `json:"parameters"`
	BuildHtml        string            `json:"buildHtml"`
	StepsHtml        string            `json:"stepsHtml"`
	Build            *model.BuildData  `json:"build"`
}

func ingestHandler(palette *colormap.Map, titleParameter string, buildChan chan model.BuildData) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			http.Error(writer, "POST required", http.StatusMethodNotAllowed)
			return
		}
		body, err := ioutil.ReadAll(request.Body)
		if err != nil {
			logWebError(err, "Failed to read ingest body", request, writer)
			return
		}
		var req ingestRequest
		err = json.Unmarshal(body, &req)
		if err != nil {
			http.Error(writer, fmt.Sprintf("Invalid ingest document: %v", err), http.StatusBadRequest)
			return
		}
		if req.Build != nil {
			if req.Build.JobName == "" || req.Build.BuildId == "" || req.Build.NodeRoot == nil {
				http.Error(writer, "build document needs jobName, buildId and nodeRoot", http.StatusBadRequest)
				return
			}
			buildChan <- *req.Build
			writer.Header().Set("content-type", "application/json")
			writer.WriteHeader(http.StatusAccepted)
			fmt.Fprintf(writer, `{"jobName":%q,"buildId":%q}`, req.Build.JobName, req.Build.BuildId)
			return
		}
		if req.JobName == "" || req.BuildId == "" {
			http.Error(writer, "jobName and buildId are required", http.StatusBadRequest)
			return
		}
		params := req.Parameters
		if params == nil {
			params, err = ingress.ParseBuildParameters(req.BuildHtml)
			if err != nil {
				http.Error(writer, fmt.Sprintf("Invalid build parameters: %v", err), http.StatusBadRequest)
				return
			}
		}
		buildStart := time.Unix(req.BuildStartTimeMs/1000, 1000*1000*(req.BuildStartTimeMs%1000)).UTC()
		buildDoc, err := ingress.IngestBuild(palette, titleParameter, req.JobName, req.BuildId, buildStart, params, req.StepsHtml)
		if err != nil {
			http.Error(writer, fmt.Sprintf("Failed to ingest build: %v", err), http.StatusBadRequest)
			return
		}
		buildChan <- buildDoc
		glog.V(common.LogLevelDebug).Infof("reqId: %v accepted build %v/%v for ingestion", getRequestId(request.Context()), req.JobName, req.BuildId)

		writer.Header().Set("content-type", "application/json")
		writer.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(writer, `{"jobName":%q,"buildId":%q}`, req.JobName, req.BuildId)
	}
}

func healthHandler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		writer.Write([]byte(http.StatusText(http.StatusOK)))
	}
}

func Run(config WebConfig, tables typed.Tables, palette *colormap.Map, buildChan chan model.BuildData) error {
	webFiles = config.WebFilesPath
	fs := &afero.Afero{Fs: afero.NewOsFs()}

	server := &Server{}
	server.mux = http.NewServeMux()
	server.mux.HandleFunc("/webfiles/", middlewareChain("webfile", webFileHandler(fs)))
	server.mux.HandleFunc("/data/backup", middlewareChain("backup", backupHandler(tables.Db())))
	server.mux.HandleFunc("/data/ingest", middlewareChain("ingest", ingestHandler(palette, config.TitleParameter, buildChan)))
	server.mux.HandleFunc("/data", middlewareChain("query", queryHandler(tables, palette.ColorToId(), config.MaxLookback)))
	// Debug pages
	server.mux.HandleFunc("/debug/", middlewareChain("debug", debugHandler(fs)))
	server.mux.HandleFunc("/debug/listkeys/", middlewareChain("listkeys", listKeysHandler(tables, fs)))
	server.mux.HandleFunc("/debug/view/", middlewareChain("viewkey", viewKeyHandler(tables)))
	server.mux.HandleFunc("/debug/tables/", middlewareChain("badgertables", debugBadgerTablesHandler(tables.Db())))
	server.mux.HandleFunc("/debug/config/", middlewareChain("config", configHandler(config.ConfigYaml, fs)))
	// Badger uses the trace package, which registers /debug/requests and /debug/events
	server.mux.HandleFunc("/debug/requests", trace.Traces)
	server.mux.HandleFunc("/debug/events", trace.Events)
	// Badger also uses expvar which exposes prometheus compatible metrics on /debug/vars
	server.mux.HandleFunc("/debug/vars", expvar.Handler().ServeHTTP)

	server.mux.HandleFunc("/healthz", healthHandler())
	server.mux.Handle("/metrics", promhttp.Handler())
	server.mux.HandleFunc("/", middlewareChain("index", indexHandler(config, fs)))

	addr := fmt.Sprintf("%v:%v", config.BindAddress, config.Port)

	h := &http.Server{
		Addr:     addr,
		Handler:  server,
		ErrorLog: log.New(os.Stdout, "http: ", log.LstdFlags),
	}

	glog.Infof("Listening on http://localhost:%v", config.Port)

	stop := make(chan os.Signal, 1)

	go func() { _ = h.ListenAndServe() }()

	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	glog.Infof("Shutting down server...")
	ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFn()
	err := h.Shutdown(ctx)
	glog.Infof("WebServer closed")

	return err
}
