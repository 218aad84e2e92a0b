package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/simpledb/internal/config"
	"github.com/saltyorg/simpledb/internal/database"
	"github.com/saltyorg/simpledb/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	dbConfig  config.Database
	verbosity int
	logFile   string
	inList    bool
)

func main() {
	loader := config.NewLoader(config.Env("SIMPLEDB"))
	dbConfig = config.LoadDatabase(loader)

	rootCmd := &cobra.Command{
		Use:   "simpledb",
		Short: "simpledb - run SQL statements with bound parameters",
		Long: `simpledb runs one SQL statement against a MySQL, PostgreSQL or SQLite database.
Positional ? markers in the statement are bound to the remaining arguments in order.
Connection settings default to SIMPLEDB_DB_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Apply(logging.LevelForVerbosity(verbosity), loader, logFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbConfig.Driver, "driver", dbConfig.Driver, "Database driver: mysql, pgx or sqlite")
	flags.StringVarP(&dbConfig.Host, "host", "H", dbConfig.Host, "Database host")
	flags.IntVarP(&dbConfig.Port, "port", "P", dbConfig.Port, "Database port (0 for the driver default)")
	flags.StringVarP(&dbConfig.Username, "user", "u", dbConfig.Username, "Database user")
	flags.StringVarP(&dbConfig.Password, "password", "p", dbConfig.Password, "Database password")
	flags.StringVarP(&dbConfig.Name, "db", "d", dbConfig.Name, "Database name, or file path for sqlite")
	flags.BoolVar(&dbConfig.DevMode, "dev", dbConfig.DevMode, "Print every statement before it runs")
	flags.DurationVar(&dbConfig.ConnectTimeout, "connect-timeout", dbConfig.ConnectTimeout, "Give up connecting after this long (0 waits forever)")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	flags.BoolVar(&inList, "in", false, "Expand the first ? into one marker per argument (IN lists)")
	flags.StringVar(&logFile, "log-file", loader.String("log.file", ""), "Also write logs to this rotating file")

	execCmd := &cobra.Command{
		Use:   "exec SQL [ARG...]",
		Short: "Run an UPDATE, DELETE or DDL statement and print the affected row count",
		Args:  cobra.MinimumNArgs(1),
		RunE: withDB(func(ctx context.Context, db *database.DB, args []string) error {
			n, err := statement(db, args).Update(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d row(s) affected\n", n)
			return nil
		}),
	}

	insertCmd := &cobra.Command{
		Use:   "insert SQL [ARG...]",
		Short: "Run an INSERT statement and print the generated key",
		Args:  cobra.MinimumNArgs(1),
		RunE: withDB(func(ctx context.Context, db *database.DB, args []string) error {
			id, err := statement(db, args).Insert(ctx)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		}),
	}

	queryCmd := &cobra.Command{
		Use:   "query SQL [ARG...]",
		Short: "Run a SELECT statement and print the rows as a table",
		Args:  cobra.MinimumNArgs(1),
		RunE: withDB(func(ctx context.Context, db *database.DB, args []string) error {
			rows, err := statement(db, args).SelectRows(ctx)
			if err != nil {
				return err
			}
			return printRows(rows)
		}),
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, db *database.DB, _ []string) error {
			if err := db.Ping(ctx); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		}),
	}

	rootCmd.AddCommand(execCmd, insertCmd, queryCmd, pingCmd, &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("simpledb %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func withDB(fn func(ctx context.Context, db *database.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Debug().
			Str("driver", dbConfig.Driver).
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Name).
			Msg("Connecting")

		db, err := database.New(dbConfig)
		if err != nil {
			return err
		}
		defer db.Close()

		start := time.Now()
		err = fn(ctx, db, args)
		log.Debug().Dur("elapsed", time.Since(start)).Msg("Statement finished")
		if err != nil {
			log.Error().Err(err).Msg("Statement failed")
		}
		return err
	}
}

// statement builds a statement from the SQL argument and binds the rest as
// string parameters
func statement(db *database.DB, args []string) *database.Statement {
	params := database.Args(args[1:])
	if inList {
		return db.GenSQL().AppendIn(args[0], params...)
	}
	return db.GenSQL().Append(args[0], params...)
}

func printRows(rows []database.Row) error {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(rows[0].Columns(), "\t"))
	for _, r := range rows {
		cells := make([]string, r.Len())
		for i := range cells {
			cells[i] = formatValue(r.At(i))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case []byte:
		return fmt.Sprintf("0x%x", x)
	}
	return fmt.Sprint(v)
}
