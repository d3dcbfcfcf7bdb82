package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.ConnectedEvent:
		o.printIdentity(v.Identity)
		fmt.Printf("Token: %s\n", v.Token)
	case model.IdentityView:
		o.printIdentity(v)
	case RoomList:
		o.printRoomList(v)
	case Catalog:
		o.printCatalog(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomList response type (matches API)
type RoomList struct {
	Rooms []model.RoomSummary `json:"rooms"`
}

// Cosmetic response type
type Cosmetic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Catalog response type
type Catalog struct {
	Cosmetics []Cosmetic `json:"cosmetics"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentity(v model.IdentityView) {
	fmt.Printf("Handle: %s\n", v.Handle)
	fmt.Printf("Wallet: %d coins\n", v.Wallet)
	cosmetics := "none"
	if len(v.Cosmetics) > 0 {
		cosmetics = strings.Join(v.Cosmetics, ", ")
	}
	fmt.Printf("Cosmetics: %s\n", cosmetics)
	fmt.Printf("Games: %d played, %d won, %d survived\n",
		v.Stats.GamesPlayed, v.Stats.GamesWon, v.Stats.GamesSurvived)
	if v.Admin {
		fmt.Println("Admin: yes")
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No rooms open.")
		return
	}
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		locked := ""
		if r.HasSecret {
			locked = " [locked]"
		}
		fmt.Printf("  %-8s %-24q %-8s %d/%d players%s\n",
			r.ID, r.Name, r.Status, r.Players, r.MaxPlayers, locked)
	}
}

func (o *Output) printCatalog(c Catalog) {
	if len(c.Cosmetics) == 0 {
		fmt.Println("The shop is empty.")
		return
	}
	fmt.Printf("Cosmetics (%d):\n", len(c.Cosmetics))
	for _, item := range c.Cosmetics {
		fmt.Printf("  %-16s %4d coins  %s\n", item.ID, item.Price, item.Name)
	}
}
