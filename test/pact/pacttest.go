//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "cement-dealer-portal-api"
	ConsumerName = "dealer-portal-web"

	StateCatalogEmpty   = "catalog is empty"
	StateProductExists  = "product pact-opc-53 exists"
	StateDealerLoggedIn = "dealer with session pact-session-token and product pact-opc-53"
)

const (
	ExistingProductID = "pact-opc-53"
	MissingProductID  = "pact-missing"

	DealerID     = "pact-dealer"
	DealerPhone  = "9876500000"
	SessionToken = "pact-session-token"
)

const (
	exampleProductName = "OPC 53 Grade Cement"
	exampleGrade       = "53 Grade"
	examplePackaging   = "50 kg bag"
	examplePrice       = 420.0
	exampleStock       = 5000
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the dealer portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProduct describes the product both sides of the contract agree on.
type ExampleProduct struct {
	ID        string
	Name      string
	Grade     string
	Packaging string
	Price     float64
	Stock     int
}

// ExistingProduct returns the product seeded by StateProductExists.
func ExistingProduct() ExampleProduct {
	return ExampleProduct{
		ID:        ExistingProductID,
		Name:      exampleProductName,
		Grade:     exampleGrade,
		Packaging: examplePackaging,
		Price:     examplePrice,
		Stock:     exampleStock,
	}
}

// BearerHeader is the Authorization value for the seeded dealer session.
func BearerHeader() string {
	return "Bearer " + SessionToken
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
