package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patrimoine/wealth-audit/internal/calculation"
	"github.com/patrimoine/wealth-audit/internal/config"
	"github.com/patrimoine/wealth-audit/internal/domain"
	"github.com/patrimoine/wealth-audit/internal/output"
	"github.com/patrimoine/wealth-audit/internal/snapshot"
)

var (
	snapshotPath string
	settingsPath string
	formatName   string
	verbose      bool

	log = logrus.New()
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wealth-audit",
		Short: "Household wealth audit and projection",
		Long: `wealth-audit projects household finances year by year, audits
borrowing capacity against the banking debt ratio, and searches savings
allocations maximizing final net worth under budget constraints.

State lives in a JSON snapshot; run parameters in a YAML settings file.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(os.Stderr)
			log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&snapshotPath, "snapshot", "s", "snapshot.json", "path to the household snapshot")
	cmd.PersistentFlags().StringVarP(&settingsPath, "settings", "c", "", "path to the settings file (optional)")
	cmd.PersistentFlags().StringVarP(&formatName, "format", "f", "console", "output format (console, csv, json)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(projectCmd(), capacityCmd(), optimizeCmd(), syncCmd(), exampleCmd())
	return cmd
}

// loadInputs reads the snapshot and, when a settings file is given, lets its
// projection section override the snapshot's embedded one.
func loadInputs() (snapshot.State, *config.Settings, error) {
	state, err := snapshot.Load(snapshotPath)
	if err != nil {
		return snapshot.State{}, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var settings *config.Settings
	if settingsPath != "" {
		settings, err = config.NewSettingsParser().LoadFromFile(settingsPath)
		if err != nil {
			return snapshot.State{}, nil, fmt.Errorf("failed to load settings: %w", err)
		}
		state.Settings = settings.Projection
	}
	return state, settings, nil
}

func render(report *output.Report) error {
	formatter := output.GetFormatterByName(formatName)
	if formatter == nil {
		return fmt.Errorf("unknown output format %q", formatName)
	}
	data, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func projectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Project household finances year by year",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, _, err := loadInputs()
			if err != nil {
				return err
			}

			synchronizer := calculation.NewFlowSynchronizer(calculation.NewLoanAmortizer())
			ledger := synchronizer.Synchronize(state.Ledger, state.Household, state.Assets, state.Liabilities)

			projector := calculation.NewProjector(nil)
			projector.SetLogger(log)
			rows, err := projector.Project(calculation.ProjectionState{
				Household:   state.Household,
				Assets:      state.Assets,
				Liabilities: state.Liabilities,
				Ledger:      ledger,
				Settings:    state.Settings,
			})
			if err != nil {
				return fmt.Errorf("projection failed: %w", err)
			}

			return render(&output.Report{
				GeneratedAt: time.Now(),
				Patrimoine:  calculation.Patrimoine(state.Assets, state.Liabilities, time.Now()),
				Projection:  rows,
			})
		},
	}
}

func capacityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capacity",
		Short: "Audit borrowing capacity against the debt ratio ceiling",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, settings, err := loadInputs()
			if err != nil {
				return err
			}

			maxRatio := decimal.Zero
			if settings != nil {
				maxRatio = settings.MaxDebtRatioPct
			}

			synchronizer := calculation.NewFlowSynchronizer(calculation.NewLoanAmortizer())
			ledger := synchronizer.Synchronize(state.Ledger, state.Household, state.Assets, state.Liabilities)

			analyzer := calculation.NewDebtCapacityAnalyzer()
			result := analyzer.Capacity(ledger, state.Liabilities, maxRatio)

			return render(&output.Report{
				GeneratedAt: time.Now(),
				Patrimoine:  calculation.Patrimoine(state.Assets, state.Liabilities, time.Now()),
				Capacity:    &result,
			})
		},
	}
}

func optimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Search the savings allocation maximizing final net worth",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, settings, err := loadInputs()
			if err != nil {
				return err
			}
			if settings == nil {
				return fmt.Errorf("optimize requires a settings file (--settings)")
			}

			params := settings.Optimizer.SimulationParams(state.Settings.SocialLevyRatePct)
			optimizer := calculation.NewPortfolioOptimizer(params, settings.Optimizer.Constraints)
			optimizer.Logger = log
			result := optimizer.Optimize(calculation.OptimizerInput{})

			return render(&output.Report{
				GeneratedAt:  time.Now(),
				Patrimoine:   calculation.Patrimoine(state.Assets, state.Liabilities, time.Now()),
				Optimization: &result,
			})
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the derived ledger entries and rewrite the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, _, err := loadInputs()
			if err != nil {
				return err
			}

			synchronizer := calculation.NewFlowSynchronizer(calculation.NewLoanAmortizer())
			state.Ledger = synchronizer.Synchronize(state.Ledger, state.Household, state.Assets, state.Liabilities)

			if err := snapshot.Save(snapshotPath, state); err != nil {
				return fmt.Errorf("failed to save snapshot: %w", err)
			}
			log.Infof("snapshot %s synchronized", snapshotPath)
			return nil
		},
	}
}

func exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Write example snapshot and settings files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewSettingsParser().WriteExample("example_settings.yaml"); err != nil {
				return fmt.Errorf("failed to write example settings: %w", err)
			}
			if err := snapshot.Save("example_snapshot.json", exampleState()); err != nil {
				return fmt.Errorf("failed to write example snapshot: %w", err)
			}
			fmt.Println("Wrote example_settings.yaml and example_snapshot.json")
			return nil
		},
	}
}

// exampleState builds a small but representative household: two salaried
// parents, one child, a main home and a bare rental under Pinel financed by
// a linked loan. Derived ledger entries are synchronized before saving.
func exampleState() snapshot.State {
	home := domain.Asset{
		ID:                uuid.New(),
		Label:             "Résidence principale",
		Type:              domain.AssetOwnerOccupiedRealEstate,
		Value:             decimal.NewFromInt(380000),
		MonthlyCharges:    decimal.NewFromInt(180),
		AnnualPropertyTax: decimal.NewFromInt(1400),
	}
	rental := domain.Asset{
		ID:                uuid.New(),
		Label:             "Appartement locatif",
		Type:              domain.AssetIncomeRealEstate,
		Value:             decimal.NewFromInt(210000),
		MonthlyCharges:    decimal.NewFromInt(95),
		AnnualPropertyTax: decimal.NewFromInt(900),
		Rental: &domain.RentalDetails{
			MonthlyRent:         decimal.NewFromInt(750),
			OperatingMode:       domain.BareRental,
			TaxScheme:           domain.SchemePinel,
			SchemeStartYear:     2022,
			SchemeDurationYears: 9,
		},
	}
	rentalLoan := domain.Liability{
		ID:             uuid.New(),
		Label:          "Prêt locatif",
		Principal:      decimal.NewFromInt(180000),
		AnnualRatePct:  decimal.NewFromFloat(2.1),
		DurationMonths: 240,
		StartDate:      time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		LinkedAssetID:  &rental.ID,
	}

	state := snapshot.State{
		Household: domain.Household{
			Parents: []domain.Person{
				{Name: "Claire", BirthDate: time.Date(1972, 5, 14, 0, 0, 0, 0, time.UTC)},
				{Name: "Marc", BirthDate: time.Date(1970, 11, 2, 0, 0, 0, 0, time.UTC)},
			},
			Children: []domain.Person{
				{Name: "Jules", BirthDate: time.Date(2008, 9, 21, 0, 0, 0, 0, time.UTC)},
			},
		},
		Assets:      []domain.Asset{home, rental},
		Liabilities: []domain.Liability{rentalLoan},
		Settings: domain.ProjectionSettings{
			BaseYear:               time.Now().Year(),
			HorizonYears:           25,
			DefaultRetirementAge:   64,
			PensionRate:            decimal.NewFromFloat(0.55),
			EducationStartAge:      18,
			EducationDurationYears: 5,
			ChildMonthlySalary:     decimal.NewFromInt(1800),
			SocialLevyRatePct:      decimal.NewFromFloat(17.2),
		},
		Ledger: domain.Ledger{
			Incomes: []domain.IncomeEntry{
				{ID: uuid.New(), Label: "Salaire Claire", MonthlyAmount: decimal.NewFromInt(3400), Kind: domain.IncomeSalary, ParentName: "Claire"},
				{ID: uuid.New(), Label: "Salaire Marc", MonthlyAmount: decimal.NewFromInt(2900), Kind: domain.IncomeSalary, ParentName: "Marc"},
			},
			Expenses: []domain.ExpenseEntry{
				{ID: uuid.New(), Label: "Dépenses courantes", MonthlyAmount: decimal.NewFromInt(2600), Kind: domain.ExpenseLiving},
			},
		},
	}

	synchronizer := calculation.NewFlowSynchronizer(calculation.NewLoanAmortizer())
	state.Ledger = synchronizer.Synchronize(state.Ledger, state.Household, state.Assets, state.Liabilities)
	return state
}
