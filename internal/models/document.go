package models

const DefaultCheckinPoints = 10

// DateLayout is the calendar-date form stored in UserAccount.LastCheckin.
const DateLayout = "2006-01-02"

const (
	GiftTypeManual = "manual"
	GiftTypeCode   = "code"
)

// Document is the whole persisted state: one Context per conversation/group.
// It is loaded once at startup, mutated in memory and replaced wholesale on
// every save.
type Document struct {
	Contexts map[string]*Context `json:"contexts"`
}

type Context struct {
	Users  map[string]*UserAccount `json:"users"`
	Gifts  map[string]*Gift        `json:"gifts"`
	Config ContextConfig           `json:"config"`
	Admins map[string]bool         `json:"admins"`
}

type ContextConfig struct {
	PointsPerCheckin int `json:"points_per_checkin"`
}

type UserAccount struct {
	Username       string         `json:"username"`
	Points         int            `json:"points"`
	TotalDays      int            `json:"total_days"`
	ContinuousDays int            `json:"continuous_days"`
	MonthDays      int            `json:"month_days"`
	LastCheckin    string         `json:"last_checkin,omitempty"`
	Purchases      map[string]int `json:"purchases"`
}

type Gift struct {
	Name           string              `json:"name"`
	PointsRequired int                 `json:"points_required"`
	Quantity       int                 `json:"quantity"`
	PerUserLimit   int                 `json:"per_user_limit"`
	Type           string              `json:"type"`
	Codes          []string            `json:"codes,omitempty"`
	Description    string              `json:"description,omitempty"`
	DeliveredCodes map[string][]string `json:"delivered_codes,omitempty"`
}

func NewDocument() *Document {
	return &Document{Contexts: make(map[string]*Context)}
}

func NewContext(checkinPoints int) *Context {
	return &Context{
		Users:  make(map[string]*UserAccount),
		Gifts:  make(map[string]*Gift),
		Config: ContextConfig{PointsPerCheckin: checkinPoints},
		Admins: make(map[string]bool),
	}
}

func NewUserAccount(username string) *UserAccount {
	return &UserAccount{
		Username:  username,
		Purchases: make(map[string]int),
	}
}

// Normalize repairs nil sub-structures after a load, so no operation ever
// sees a partial context. Hand-edited or truncated documents stay usable.
func (d *Document) Normalize() {
	if d.Contexts == nil {
		d.Contexts = make(map[string]*Context)
	}
	for _, c := range d.Contexts {
		if c.Users == nil {
			c.Users = make(map[string]*UserAccount)
		}
		if c.Gifts == nil {
			c.Gifts = make(map[string]*Gift)
		}
		if c.Admins == nil {
			c.Admins = make(map[string]bool)
		}
		if c.Config.PointsPerCheckin < 0 {
			c.Config.PointsPerCheckin = 0
		}
		for _, u := range c.Users {
			if u.Purchases == nil {
				u.Purchases = make(map[string]int)
			}
		}
		for _, g := range c.Gifts {
			if g.Type == "" {
				g.Type = GiftTypeManual
			}
		}
	}
}

func (u *UserAccount) Clone() *UserAccount {
	cp := *u
	cp.Purchases = make(map[string]int, len(u.Purchases))
	for k, v := range u.Purchases {
		cp.Purchases[k] = v
	}
	return &cp
}

func (g *Gift) Clone() *Gift {
	cp := *g
	cp.Codes = append([]string(nil), g.Codes...)
	if g.DeliveredCodes != nil {
		cp.DeliveredCodes = make(map[string][]string, len(g.DeliveredCodes))
		for k, v := range g.DeliveredCodes {
			cp.DeliveredCodes[k] = append([]string(nil), v...)
		}
	}
	return &cp
}
