package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sf-housing/services"
	"sf-housing/utils"
)

var numericParsers = map[string]func(string) (float64, bool){
	"beds":  services.ParseBeds,
	"bath":  services.ParseBath,
	"sqft":  services.ParseSqft,
	"price": services.FormatPrice,
}

var parseCmd = &cobra.Command{
	Use:   "parse <beds|bath|sqft|price|type> <text>",
	Short: "Apply one field parser to a string",
	Example: `  sf-housing parse beds "3 bd, 2 ba, 1,500 sqft"
  sf-housing parse price '$1.2M'
  sf-housing parse type "Condo For Sale"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		field, text := strings.ToLower(args[0]), args[1]

		if field == "type" {
			pt, ok := services.NewCleaner(utils.NewLoggerTo(cmd.ErrOrStderr(), cmd.ErrOrStderr())).ParsePropertyType(text)
			if !ok {
				fmt.Fprintln(out, "absent")
				return nil
			}
			fmt.Fprintln(out, pt)
			return nil
		}

		parse, found := numericParsers[field]
		if !found {
			names := make([]string, 0, len(numericParsers)+1)
			for name := range numericParsers {
				names = append(names, name)
			}
			names = append(names, "type")
			sort.Strings(names)
			return fmt.Errorf("unknown field %q (want one of %s)", field, strings.Join(names, ", "))
		}

		v, ok := parse(text)
		if !ok {
			fmt.Fprintln(out, "absent")
			return nil
		}
		fmt.Fprintln(out, strconv.FormatFloat(v, 'f', -1, 64))
		return nil
	},
}
