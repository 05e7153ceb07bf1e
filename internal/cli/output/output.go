// Package output renders panelctl results as a table when stdout is a
// terminal and as JSON otherwise, with --format overriding the guess.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

func Print(payload map[string]any, format string, quiet bool) error {
	if quiet {
		format = "quiet"
	}
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = DefaultFormat()
	}

	switch format {
	case "json":
		return printJSON(payload)
	case "table":
		return printTable(payload)
	case "plain":
		return printPlain(payload)
	case "quiet":
		return printQuiet(payload)
	default:
		return errors.New("invalid --format value")
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printTable(payload map[string]any) error {
	switch {
	case hasKey(payload, "domains"):
		fmt.Println("ID\tNAME\tSTATUS\tEXPIRES\tAUTO_RENEW")
		for _, row := range toObjectSlice(payload["domains"]) {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["name"]), str(row["status"]), str(row["expiresAt"]), str(row["autoRenew"]))
		}
	case hasKey(payload, "invoices"):
		fmt.Println("ID\tNUMBER\tAMOUNT\tSTATUS\tDUE")
		for _, row := range toObjectSlice(payload["invoices"]) {
			fmt.Printf("%s\t%s\t%s %s\t%s\t%s\n",
				str(row["id"]), str(row["number"]), str(row["amount"]), str(row["currency"]), str(row["status"]), str(row["dueAt"]))
		}
	case hasKey(payload, "paymentMethods"):
		fmt.Println("ID\tTYPE\tBRAND\tLAST4\tDEFAULT")
		for _, row := range toObjectSlice(payload["paymentMethods"]) {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["type"]), str(row["brand"]), str(row["last4"]), str(row["isDefault"]))
		}
	case hasKey(payload, "tickets"):
		fmt.Println("ID\tSUBJECT\tDEPARTMENT\tSTATUS\tPRIORITY")
		for _, row := range toObjectSlice(payload["tickets"]) {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["subject"]), str(row["department"]), str(row["status"]), str(row["priority"]))
		}
	case hasKey(payload, "notifications"):
		fmt.Println("ID\tTYPE\tTITLE\tREAD\tWHEN")
		for _, row := range toObjectSlice(payload["notifications"]) {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["type"]), str(row["title"]), str(row["isRead"]), str(row["timestamp"]))
		}
	default:
		return printJSON(payload)
	}
	return nil
}

func printPlain(payload map[string]any) error {
	switch {
	case hasKey(payload, "domains"):
		for _, row := range toObjectSlice(payload["domains"]) {
			fmt.Printf("%s %s %s\n", str(row["id"]), str(row["name"]), str(row["status"]))
		}
	case hasKey(payload, "invoices"):
		for _, row := range toObjectSlice(payload["invoices"]) {
			fmt.Printf("%s %s %s\n", str(row["id"]), str(row["number"]), str(row["status"]))
		}
	case hasKey(payload, "paymentMethods"):
		for _, row := range toObjectSlice(payload["paymentMethods"]) {
			fmt.Printf("%s %s-%s\n", str(row["id"]), str(row["brand"]), str(row["last4"]))
		}
	case hasKey(payload, "tickets"):
		for _, row := range toObjectSlice(payload["tickets"]) {
			fmt.Printf("%s %s %s\n", str(row["id"]), str(row["status"]), str(row["subject"]))
		}
	case hasKey(payload, "notifications"):
		for _, row := range toObjectSlice(payload["notifications"]) {
			fmt.Printf("%s %s %s\n", str(row["id"]), str(row["type"]), str(row["title"]))
		}
	default:
		return printJSON(payload)
	}
	return nil
}

func printQuiet(payload map[string]any) error {
	for _, key := range []string{"domains", "invoices", "paymentMethods", "tickets", "notifications"} {
		if hasKey(payload, key) {
			for _, row := range toObjectSlice(payload[key]) {
				fmt.Println(str(row["id"]))
			}
			return nil
		}
	}
	if id, ok := payload["id"]; ok {
		fmt.Println(str(id))
		return nil
	}
	return printJSON(payload)
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func toObjectSlice(v any) []map[string]any {
	in, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, item := range in {
		if row, ok := item.(map[string]any); ok {
			out = append(out, row)
		}
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
