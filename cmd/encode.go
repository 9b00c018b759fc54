package cmd

import (
	"fmt"

	"geohash-service/geohash"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var lat, lng float64
	var precision int

	c := &cobra.Command{
		Use:   "encode",
		Short: "Print the geohash of a coordinate",
		Example: `  geohash-service encode --lat 34.0522 --lng -118.2437
  geohash-service encode --lat 34.0522 --lng -118.2437 --precision 9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hash, err := geohash.Encode(lat, lng, precision)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	c.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees, [-90, 90]")
	c.Flags().Float64Var(&lng, "lng", 0, "longitude in degrees, [-180, 180]")
	c.Flags().IntVar(&precision, "precision", geohash.DefaultPrecision, "geohash length")
	_ = c.MarkFlagRequired("lat")
	_ = c.MarkFlagRequired("lng")

	return c
}

func init() {
	rootCmd.AddCommand(newEncodeCmd())
}
