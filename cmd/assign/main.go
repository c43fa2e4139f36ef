package main

import (
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/app/drivers/logger"
	"clinicdesk-service/internal/app/services/clinic_api"
	"clinicdesk-service/internal/app/services/clinic_api/appointments"
	"clinicdesk-service/internal/app/services/clinic_api/assignments"
	"clinicdesk-service/internal/app/services/clinic_api/catalog"
	"clinicdesk-service/internal/app/services/core/service_assignment"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/dto/requests"
	"clinicdesk-service/internal/pkg/utils"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clinicdesk-assign",
		Short: "Assign billable services to an appointment without the HTTP host",
		Long: "Loads an appointment, the service catalog and the current assignment, " +
			"applies the given toggles and optionally submits the selection.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// only an explicit --base-url overrides the configured one
			if cmd.Flags().Changed("base-url") {
				baseURL, _ := cmd.Flags().GetString("base-url")
				v.Set("clinic_api.base_url", baseURL)
			}
			toggleIDs, err := cmd.Flags().GetInt64Slice("toggle")
			if err != nil {
				return err
			}
			return runAssign(cmd.Context(), v, toggleIDs, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "optional config file (yaml, json or toml)")
	flags.Int64("appointment-id", 0, "appointment to assign services to")
	flags.String("token", "", "bearer token for the clinic API (env CLINICDESK_TOKEN)")
	flags.String("base-url", "", "clinic API base url")
	flags.Int64Slice("toggle", nil, "service ids to toggle, in order")
	flags.Bool("submit", false, "submit the resulting selection")
	flags.Duration("load-timeout", 30*time.Second, "how long to wait for the initial loads")

	v.BindPFlag("config", flags.Lookup("config"))
	v.BindPFlag("appointment_id", flags.Lookup("appointment-id"))
	v.BindPFlag("token", flags.Lookup("token"))
	v.BindPFlag("submit", flags.Lookup("submit"))
	v.BindPFlag("load_timeout", flags.Lookup("load-timeout"))
	v.BindEnv("token", "CLINICDESK_TOKEN")

	return cmd
}

func runAssign(ctx context.Context, v *viper.Viper, toggleIDs []int64, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	internalConfig, err := config.LoadInternalConfig(v)
	if err != nil {
		return err
	}
	zapLogger, err := logger.NewZapLogger(config.NewDriverConfig(), internalConfig)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	appointmentID := v.GetInt64("appointment_id")
	if appointmentID <= 0 {
		return fmt.Errorf("--appointment-id must be a positive id")
	}
	bearer := credential.NewBearer(v.GetString("token"))

	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())

	clinicClient := clinic_api.NewClient(internalConfig.ClinicAPI, zapLogger)
	assignmentSource := assignments.NewAssignmentClinicClient(clinicClient, zapLogger)
	registry := service_assignment.NewRegistry(zapLogger)
	defer registry.CloseAll()

	usecase := service_assignment.NewServiceAssignmentUsecase(
		registry,
		service_assignment.FlowSources{
			Appointments: appointments.NewAppointmentClinicClient(clinicClient, zapLogger),
			Catalog:      catalog.NewCatalogClinicClient(clinicClient, zapLogger),
			Assignments:  assignmentSource,
		},
		nil,
		nil,
		internalConfig,
		zapLogger,
	)

	loadCtx, cancel := context.WithTimeout(ctx, v.GetDuration("load_timeout"))
	view, err := usecase.OpenFlow(loadCtx, bearer, &requests.OpenServiceAssignmentFlow{AppointmentID: appointmentID})
	cancel()
	if err != nil {
		return err
	}
	if view.Loading {
		return fmt.Errorf("appointment %d still loading after %s", appointmentID, v.GetDuration("load_timeout"))
	}

	for _, serviceID := range toggleIDs {
		view, err = usecase.ToggleService(ctx, view.FlowID, &requests.ToggleService{ServiceID: serviceID})
		if err != nil {
			return err
		}
	}

	if v.GetBool("submit") {
		view, err = usecase.SubmitAssignment(ctx, bearer, view.FlowID)
		if err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}
