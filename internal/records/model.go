package records

// Gender and activity values offered by the form. They are advisory: the store
// accepts any string.
var (
	Genders        = []string{"Male", "Female", "Other"}
	ActivityLevels = []string{"Sedentary", "Light", "Moderate", "Active", "Very Active"}
)

// Record is one submitted exercise session and its calorie estimate.
type Record struct {
	Identifier    string  `json:"email"`
	Name          string  `json:"name"`
	Age           float64 `json:"age"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	Duration      float64 `json:"duration"`
	HeartRate     float64 `json:"heart_rate"`
	BodyTemp      float64 `json:"body_temp"`
	CaloriesBurnt float64 `json:"calories_burnt"`
}

// KnownGender reports whether g is one of the offered genders.
func KnownGender(g string) bool {
	return contains(Genders, g)
}

// KnownActivityLevel reports whether a is one of the offered activity levels.
func KnownActivityLevel(a string) bool {
	return contains(ActivityLevels, a)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
