package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/corpcare/agentbooking/internal/adapters/database"
	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

var seedSlots = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00"}

// availabilityFrom builds a calendar of days working days starting at start.
// Weekends are listed but marked unavailable.
func availabilityFrom(start time.Time, days int) entities.AvailabilityCalendar {
	calendar := make(entities.AvailabilityCalendar, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
		slots := make([]string, len(seedSlots))
		copy(slots, seedSlots)
		calendar = append(calendar, entities.AvailabilityDay{
			Date:        day.Format(entities.DateLayout),
			TimeSlots:   slots,
			IsAvailable: !weekend,
		})
	}
	return calendar
}

func seedDoctors(calendar entities.AvailabilityCalendar) []services.DoctorInput {
	return []services.DoctorInput{
		{Name: "Dr. Nimal Perera", Email: "nimal.perera@citygeneral.test", Phone: "0112345671", Specialization: "Cardiology", Hospital: "City General Hospital", Qualifications: "MBBS, MD", ExperienceYears: 18, ConsultationFee: 3500, Availability: calendar},
		{Name: "Dr. Amara Fernando", Email: "amara.fernando@lanka.test", Phone: "0112345672", Specialization: "Dermatology", Hospital: "Lanka Hospital", Qualifications: "MBBS, MD (Derm)", ExperienceYears: 12, ConsultationFee: 3000, Availability: calendar},
		{Name: "Dr. Ruwan Silva", Email: "ruwan.silva@citygeneral.test", Phone: "0112345673", Specialization: "General Practice", Hospital: "City General Hospital", Qualifications: "MBBS", ExperienceYears: 7, ConsultationFee: 1500, Availability: calendar},
		{Name: "Dr. Dilini Jayasuriya", Email: "dilini.j@nawaloka.test", Phone: "0112345674", Specialization: "Pediatrics", Hospital: "Nawaloka Hospital", Qualifications: "MBBS, DCH", ExperienceYears: 10, ConsultationFee: 2500, Availability: calendar},
		{Name: "Dr. Kasun Wijesinghe", Email: "kasun.w@asiri.test", Phone: "0112345675", Specialization: "Orthopedics", Hospital: "Asiri Hospital", Qualifications: "MBBS, MS (Ortho)", ExperienceYears: 15, ConsultationFee: 4000, Availability: calendar},
	}
}

func seedCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample doctors with upcoming availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			doctorService := services.NewDoctorService(
				database.NewDoctorAdapter(client), database.NewAppointmentAdapter(client), nil,
			)

			calendar := availabilityFrom(time.Now().UTC(), days)
			created := 0
			for _, input := range seedDoctors(calendar) {
				doctor, err := doctorService.Create(ctx, input)
				if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
					log.Info().Str("email", input.Email).Msg("Doctor already seeded")
					continue
				}
				if err != nil {
					return err
				}
				created++
				log.Info().Str("doctor_id", doctor.ID).Str("name", doctor.Name).Msg("Seeded doctor")
			}

			log.Info().Int("created", created).Int("days", days).Msg("Seeding complete")
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 14, "Number of days of availability to generate")
	return cmd
}
