package config

import "time"

type Config struct {
	Environment Environment
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"chow.db"`
	JWTSecret   string `env:"JWT_SECRET"`

	Razorpay  Razorpay  `envPrefix:"RAZORPAY_"`
	Delhivery Delhivery `envPrefix:"DELHIVERY_"`
	Delivery  Delivery  `envPrefix:"DELIVERY_"`
	Geo       Geo       `envPrefix:"GEO_"`
	Shipment  Shipment  `envPrefix:"SHIPMENT_"`
	Cleanup   Cleanup   `envPrefix:"CLEANUP_"`
}

type Razorpay struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID         string `env:"KEY_ID"`
	KeySecret     string `env:"KEY_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Delhivery struct {
	BaseURL   string `env:"BASE_URL" envDefault:"https://track.delhivery.com"`
	Token     string `env:"TOKEN"`
	PickupPin string `env:"PICKUP_PIN" envDefault:"273002"`
}

// Delivery holds the local-zone routing rule and the self-delivery rate card.
type Delivery struct {
	BasePincode   string   `env:"BASE_PINCODE" envDefault:"273001"`
	LocalPincodes []string `env:"LOCAL_PINCODES" envSeparator:","`

	BaseRate         int64   `env:"BASE_RATE" envDefault:"30"`
	PerKmRate        int64   `env:"PER_KM_RATE" envDefault:"5"`
	PerKgRate        int64   `env:"PER_KG_RATE" envDefault:"10"`
	FallbackDistance float64 `env:"FALLBACK_DISTANCE_KM" envDefault:"5"`
}

type Geo struct {
	NominatimURL string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org"`
	OSRMURL      string        `env:"OSRM_URL" envDefault:"https://router.project-osrm.org"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type Shipment struct {
	MaxAttempts   int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"10m"`
}

type Cleanup struct {
	PendingTTL time.Duration `env:"PENDING_TTL" envDefault:"24h"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Gorakhpur pincodes served by the in-house delivery fleet.
var defaultLocalPincodes = []string{
	"273001", "273002", "273003", "273004", "273005", "273006", "273007", "273008", "273009", "273010",
	"273011", "273012", "273013", "273014", "273015", "273016", "273017", "273018", "273019", "273020",
	"273401", "273402", "273403", "273404", "273405", "273406", "273407", "273408", "273409", "273410",
}

// ApplyDefaults fills values env.Parse cannot default, like the local-zone list.
func (c *Config) ApplyDefaults() {
	if len(c.Delivery.LocalPincodes) == 0 {
		c.Delivery.LocalPincodes = defaultLocalPincodes
	}
}
