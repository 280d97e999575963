package cmd

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/XiaoShengSPiano/test-tools/session"
)

var sessions *session.Manager

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analysis API",
	Long:  `Serves the analysis API`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// InitSessions prepares the session store; e2e tests call it directly
// instead of going through serve.
func InitSessions() {
	sessions = session.NewManager(30 * time.Minute)
}

// NewRouter builds the full route table wrapped in the CORS handler.
func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	router.HandleFunc("/sessions/{id}/report", HandleReport).Methods("GET")
	router.HandleFunc("/sessions/{id}/faults", HandleFaults).Methods("GET")
	router.HandleFunc("/sessions/{id}/histogram", HandleHistogram).Methods("GET")
	router.HandleFunc("/sessions/{id}", HandleClose).Methods("DELETE")
	return cors.Default().Handler(router)
}

func serve() {
	InitSessions()
	log.Fatal(http.ListenAndServe(":8080", NewRouter()))
}
