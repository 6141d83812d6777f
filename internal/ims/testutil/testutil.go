package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "connect-bakery-test-secret"

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB opens an isolated SQLite database file for one test and migrates every table.
// A single connection serialises transactions the way one postgres session would.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ims.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupRouter creates a gin engine in test mode
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// GenerateTestToken creates a signed token accepted by middleware.JWTAuth(JWTSecret)
func GenerateTestToken(userID, name string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: userID,
		Name:   name,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "connect-bakery",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(JWTSecret))
	return signed
}

// DoRequest executes an HTTP request against the test router.
// A string body is sent as-is, anything else is JSON encoded.
func DoRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBytes, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON envelope into a map
func ParseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	return result
}

func SeedSupplier(t *testing.T, db *gorm.DB, name string) *entity.Supplier {
	t.Helper()
	phone := "0900000000"
	s := &entity.Supplier{Name: name, PhoneNumber: &phone}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("Failed to seed supplier: %v", err)
	}
	return s
}

func SeedGoods(t *testing.T, db *gorm.DB, supplierID uint, materialCode, convertRate string) *entity.Goods {
	t.Helper()
	g := &entity.Goods{
		Name:         "Goods " + materialCode,
		MaterialCode: materialCode,
		ConvertRate:  decimal.RequireFromString(convertRate),
		GoodsUnit:    "bag",
		SupplierID:   supplierID,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("Failed to seed goods: %v", err)
	}
	return g
}

func SeedCategory(t *testing.T, db *gorm.DB, name string) *entity.Category {
	t.Helper()
	c := &entity.Category{Name: name}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return c
}

func SeedRawMaterial(t *testing.T, db *gorm.DB, code string, categoryID *uint) *entity.RawMaterial {
	t.Helper()
	m := &entity.RawMaterial{Code: code, Name: "Material " + code, DefaultUnit: "kg", CategoryID: categoryID}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to seed raw material: %v", err)
	}
	return m
}

func SeedStock(t *testing.T, db *gorm.DB, code string) *entity.Stock {
	t.Helper()
	s := &entity.Stock{StockCode: code}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("Failed to seed stock: %v", err)
	}
	return s
}

// SeedInvoice writes an invoice with lines directly, bypassing the service layer
func SeedInvoice(t *testing.T, db *gorm.DB, code string, supplierID uint, lines ...entity.InvoiceLine) *entity.Invoice {
	t.Helper()
	inv := &entity.Invoice{
		Code:        code,
		CreatedDate: entity.NewDate(2026, time.October, 1),
		SupplierID:  supplierID,
		Lines:       lines,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("Failed to seed invoice: %v", err)
	}
	return inv
}

// InvoiceLine builds an invoice line for SeedInvoice
func InvoiceLine(goodsID uint, quantity, price string) entity.InvoiceLine {
	return entity.InvoiceLine{
		GoodsID:            goodsID,
		BuyQuantity:        decimal.RequireFromString(quantity),
		BuyingPricePerUnit: decimal.RequireFromString(price),
	}
}

// SeedReceipt writes a receipt with lines directly
func SeedReceipt(t *testing.T, db *gorm.DB, code string, stockID uint, lines ...entity.ReceiptLine) *entity.Receipt {
	t.Helper()
	r := &entity.Receipt{
		ReceiptCode: code,
		CreatedDate: entity.NewDate(2026, time.October, 2),
		StockID:     stockID,
		Lines:       lines,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("Failed to seed receipt: %v", err)
	}
	return r
}

// ReceiptLine builds a receipt line for SeedReceipt
func ReceiptLine(rawMaterialID uint, quantity string) entity.ReceiptLine {
	return entity.ReceiptLine{RawMaterialID: rawMaterialID, Quantity: decimal.RequireFromString(quantity)}
}

// Count returns the row count of model matching the optional where clause
func Count(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	query := db.Model(model)
	if where != "" {
		query = query.Where(where, args...)
	}
	if err := query.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count %T: %v", model, err)
	}
	return n
}

// Bearer formats an Authorization header map
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)}
}
