// reconcile compara current_stock de cada producto con la suma de sus lotes activos
// y, con -apply, fija current_stock al total de lotes.
//
// Uso: go run ./cmd/reconcile [-company <uuid>] [-all] [-apply] [-format table|csv] [-encoding utf8|latin1] [-out archivo]
// Lee la misma configuración que la API (STORAGE, DATABASE_URL, REDIS_ADDR, DISPLAY_LOCALE...).
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/local"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/foodstock-api/internal/infrastructure/redis"
	"github.com/jhoicas/foodstock-api/pkg/config"
	"github.com/jhoicas/foodstock-api/pkg/format"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// cliUserID actor registrado en los logs de conciliación hechas desde la CLI.
const cliUserID = "cli:reconcile"

type options struct {
	companyID string
	all       bool
	apply     bool
	format    string
	encoding  string
	out       string
}

func main() {
	var opts options
	flag.StringVar(&opts.companyID, "company", "", "UUID de la empresa (vacío = todas)")
	flag.BoolVar(&opts.all, "all", false, "incluir productos cuadrados en el informe")
	flag.BoolVar(&opts.apply, "apply", false, "fijar current_stock = suma de lotes activos en los productos descuadrados")
	flag.StringVar(&opts.format, "format", "table", "formato de salida: table | csv")
	flag.StringVar(&opts.encoding, "encoding", "utf8", "codificación del CSV: utf8 | latin1 (Windows-1252, para Excel)")
	flag.StringVar(&opts.out, "out", "", "archivo de salida (vacío = stdout)")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "reconcile: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.format != "table" && opts.format != "csv" {
		return fmt.Errorf("formato desconocido %q", opts.format)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	// Logs a stderr: stdout queda para el informe
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "reconcile", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uc, closeFn, err := buildUseCase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	reports, err := uc.ReportAll(ctx, opts.companyID, !opts.all)
	if err != nil {
		return err
	}
	if opts.apply {
		for i, r := range reports {
			if r.InSync() {
				continue
			}
			applied, err := uc.Apply(ctx, "", cliUserID, r.ProductID)
			if err != nil {
				return fmt.Errorf("conciliar %s: %w", r.ProductID, err)
			}
			reports[i] = *applied
		}
	}

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("crear %s: %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}

	if opts.format == "csv" {
		return writeCSV(w, opts.encoding, reports)
	}
	return writeTable(w, format.New(cfg.App.DisplayLocale), reports)
}

func buildUseCase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*inventory.ReconcileUseCase, func(), error) {
	var locker inventory.ProductLocker = local.NewProductLocker(cfg.Lock.Wait())
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, infraredis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		locker = infraredis.NewProductLocker(client, cfg.Lock.TTL, cfg.Lock.RetryCount, cfg.Lock.RetryEvery)
	}

	if cfg.App.Storage == config.StorageMemory {
		s := memory.NewStore()
		memory.SeedDemo(s, memory.DemoCompanyID)
		return inventory.NewReconcileUseCase(memory.NewTxRunner(s), s.Products(), s.Batches(), locker, log), closeAll, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	closers = append(closers, pool.Close)
	uc := inventory.NewReconcileUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewProductRepository(pool),
		postgres.NewStockBatchRepository(pool),
		locker, log,
	)
	return uc, closeAll, nil
}

func writeTable(w io.Writer, f *format.Formatter, reports []inventory.ReconciliationReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SKU\tPRODUCTO\tSTOCK\tLOTES\tDESCUADRE\tACTIVOS\tESTADO\t")
	for _, r := range reports {
		state := "cuadrado"
		switch {
		case r.Applied:
			state = "corregido"
		case !r.InSync():
			state = "descuadrado"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t\n",
			r.SKU, r.ProductName,
			f.Quantity(r.CurrentStock, r.Unit), f.Quantity(r.BatchTotal, r.Unit), f.Quantity(r.Drift, r.Unit),
			r.ActiveBatches, state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d producto(s)\n", len(reports))
	return err
}

// writeCSV con punto decimal (valores crudos) y, si se pide, en Windows-1252 para abrirlo directo en Excel.
func writeCSV(w io.Writer, encoding string, reports []inventory.ReconciliationReport) error {
	switch encoding {
	case "utf8", "utf-8", "":
	case "latin1", "windows-1252":
		tw := transform.NewWriter(w, charmap.Windows1252.NewEncoder())
		defer tw.Close()
		w = tw
	default:
		return fmt.Errorf("codificación desconocida %q", encoding)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"product_id", "sku", "producto", "unidad", "current_stock", "total_lotes", "descuadre", "lotes_activos", "corregido"}); err != nil {
		return err
	}
	for _, r := range reports {
		if err := cw.Write([]string{
			r.ProductID, r.SKU, r.ProductName, r.Unit,
			r.CurrentStock.String(), r.BatchTotal.String(), r.Drift.String(),
			strconv.Itoa(r.ActiveBatches), strconv.FormatBool(r.Applied),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
