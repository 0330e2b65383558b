package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/visorhr/visorhr-ui/internal/domain/employee"
)

func (c *cli) schemaCmd() *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List the employee record fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tFIELD\tKIND\tREQUIRED\tMAX\tOPTIONS")
			found := false
			for _, s := range employee.Sections() {
				if section != "" && !strings.EqualFold(s.Name, section) {
					continue
				}
				found = true
				for _, f := range s.Fields {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
						s.Name, f.Name, f.Kind, f.Required, maxLabel(f.MaxLength), strings.Join(f.Options, ","))
				}
			}
			if !found {
				return fmt.Errorf("unknown section %q", section)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "only list fields of this section")
	return cmd
}

func maxLabel(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func (c *cli) normalizeDateCmd() *cobra.Command {
	var birth bool
	cmd := &cobra.Command{
		Use:   "normalize-date <date>...",
		Short: "Show how date inputs are stored and displayed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, raw := range args {
				iso, err := employee.ParseDate(raw)
				if err == nil && birth {
					err = employee.CheckBirthDate(iso, c.now())
				}
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tinvalid: %v\n", raw, err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", raw, iso, employee.FormatDisplayDate(iso))
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&birth, "birth", false, "also apply the date of birth rules")
	return cmd
}
