package commands

import (
	"fmt"

	"campusassist-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var reserveCampus *string
var reservePurpose *string

func init() {
	reserveCampus = reserveCmd.Flags().String("campus", "", "The campus the room belongs to.")
	reservePurpose = reserveCmd.Flags().String("purpose", "", "Free-text purpose shown on the reservation.")
	rootCmd.AddCommand(reserveCmd)
	rootCmd.AddCommand(cancelCmd)
}

var reserveCmd = &cobra.Command{
	Use:   "reserve <roomId> <date> <startTime> <endTime>",
	Short: "Reserves a study room slot.",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		backend := buildBackend(ctx)
		defer backend.close(ctx)

		reservation, err := backend.service.ReserveRoom(
			ctx, *reserveCampus, args[0], args[1], args[2], args[3], *reservePurpose)
		if err != nil {
			serviceutil.Fatal("reservation failed", err)
		}
		if !reservation.Success {
			fmt.Println("reservation rejected, the slot is likely taken")
			return
		}
		fmt.Printf("reserved, id: %s\n", reservation.ReservationId)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <reservationId>",
	Short: "Cancels a study room reservation.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		backend := buildBackend(ctx)
		defer backend.close(ctx)

		cancel, err := backend.service.CancelReservation(ctx, "", args[0])
		if err != nil {
			serviceutil.Fatal("cancel failed", err)
		}
		if !cancel.Success {
			fmt.Println("cancel rejected by the library system")
			return
		}
		fmt.Println("reservation cancelled")
	},
}
