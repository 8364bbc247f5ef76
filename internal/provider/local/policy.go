package local

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/models"
)

// Policy turns predictions into a category.
type Policy string

const (
	// PolicyCascade applies the keyword-group priority cascade.
	PolicyCascade Policy = "cascade"
	// PolicyMapper feeds the predictions to the shared label mapper.
	PolicyMapper Policy = "mapper"
)

// ParsePolicy validates a policy name. Empty selects PolicyCascade.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyCascade, nil
	case PolicyCascade, PolicyMapper:
		return p, nil
	default:
		return "", fmt.Errorf("unknown local policy %q (expected %q or %q)", s, PolicyCascade, PolicyMapper)
	}
}

// NoPredictionsReason is the reasoning reported when the model found nothing.
const NoPredictionsReason = "No objects detected by local model."

var wordSplit = regexp.MustCompile(`[\s,]+`)

// Keyword groups checked by the cascade. Words are matched exactly against
// the words of the predicted class names.
var (
	peopleWords = []string{"person", "man", "woman", "boy", "girl", "child", "human", "face", "hair", "groom", "bride", "scuba diver", "player", "bikini", "maillot", "stole", "gown", "wig", "mask", "sunglasses", "suit", "academic gown", "lab coat", "uniform", "doctor", "nurse", "police", "soldier", "helmet", "cap", "hat"}

	officeTechWords = []string{"laptop", "notebook", "computer", "monitor", "screen", "keyboard", "mouse", "desk", "office", "briefcase", "binder", "printer", "photocopier", "telephone", "phone", "smartphone", "tablet", "calculator", "projector"}

	foodWords = []string{"food", "vegetable", "fruit", "cucumber", "tomato", "salad", "meal", "dish", "cuisine", "cooking", "bread", "cake", "pizza", "burger", "meat", "fish", "soup", "coffee", "tea", "chocolate", "ice cream", "plate", "tray", "broccoli", "cauliflower", "zucchini", "squash", "pumpkin", "corn", "mushroom", "strawberry", "orange", "lemon", "banana", "apple", "grape", "pear", "pineapple", "pepper", "onion", "garlic", "potato", "carrot", "cabbage", "lettuce", "spinach", "bean", "pea", "nut", "seed", "grain", "rice", "pasta", "noodle", "egg", "cheese", "milk", "juice", "wine", "beer", "bakery", "dessert", "snack", "breakfast", "lunch", "dinner", "supper", "appetizer", "starter", "main", "course", "side", "drink", "beverage", "espresso", "latte", "cappuccino", "mocha", "soda", "cola", "water", "cocktail", "mocktail", "smoothie", "shake", "lemonade"}

	plantWords = []string{"flower", "rose", "plant", "blossom", "bouquet", "petal", "bloom", "floral", "tree", "grass", "leaf", "garden", "pot", "vase", "daisy", "tulip", "orchid", "sunflower", "lily", "cactus", "palm", "fern", "moss", "mushroom", "fungus", "forest", "jungle", "wood", "log", "branch", "root", "stem", "bush", "shrub", "herb", "spice", "weed", "vine", "ivy", "clover", "bamboo", "reed", "seaweed", "algae", "coral"}

	animalWords = []string{"dog", "cat", "animal", "bird", "pet", "wildlife", "fish", "horse", "sheep", "cow", "pig", "chicken", "duck", "goose", "bear", "lion", "tiger", "elephant", "zebra", "monkey", "rabbit", "squirrel", "mouse", "rat", "hamster", "snake", "lizard", "frog", "turtle", "spider", "insect", "bee", "butterfly", "ant", "beetle", "terrier", "retriever", "hound", "spaniel", "corgi", "poodle", "husky", "shepherd", "beagle", "boxer", "bulldog", "dalmatian", "pug", "collie", "chihuahua", "wolf", "fox", "deer", "moose", "elk", "camel", "giraffe", "rhino", "hippo", "kangaroo", "koala", "panda", "whale", "dolphin", "shark", "eagle", "hawk", "parrot", "penguin", "owl", "swan", "flamingo", "peacock", "ostrich", "emu", "turkey", "rooster", "hen", "chick", "goat", "donkey", "mule", "buffalo", "bison", "yak", "llama", "alpaca", "seal", "walrus", "otter", "beaver", "raccoon", "skunk", "badger", "mole", "hedgehog", "bat", "crab", "lobster", "shrimp", "snail", "slug", "worm", "fly", "mosquito", "wasp", "hornet", "cricket", "grasshopper", "locust", "mantis", "dragonfly", "moth", "caterpillar", "centipede", "millipede", "scorpion", "tick", "mite", "flea", "louse"}

	landscapeWords = []string{"mountain", "landscape", "sky", "nature", "scenery", "valley", "alp", "volcano", "cliff", "coast", "beach", "ocean", "sea", "river", "lake", "forest", "park", "sand", "desert", "hill", "plain", "field", "meadow", "pasture", "swamp", "marsh", "bog", "wetland", "glacier", "iceberg", "canyon", "gorge", "ravine", "cave", "cavern", "waterfall", "stream", "creek", "brook", "pond", "pool", "lagoon", "bay", "gulf", "harbor", "port", "island", "peninsula", "cape", "headland", "point", "dune", "reef", "atoll", "archipelago", "cloud", "sun", "moon", "star", "sunrise", "sunset", "twilight", "dawn", "dusk", "night", "day", "weather", "storm", "rain", "snow", "wind", "fog", "mist", "haze", "smoke", "fire", "lightning", "thunder", "rainbow", "aurora"}

	technologyWords = []string{"computer", "phone", "tech", "device", "screen", "monitor", "keyboard", "mouse", "laptop", "tablet", "camera", "lens", "radio", "tv", "television", "speaker", "headphone", "microphone", "robot", "drone", "satellite", "rocket", "space", "science", "lab", "microscope", "telescope", "calculator", "clock", "watch", "battery", "charger", "cable", "wire", "plug", "socket", "switch", "button", "knob", "dial", "remote", "controller", "console", "game", "video", "audio", "internet", "web", "app", "software", "code", "data", "server", "cloud", "network", "wifi", "bluetooth", "usb", "hdmi", "vga", "dvd", "cd", "disk", "drive", "memory", "chip", "processor", "circuit", "board"}
)

// cascadeRule is one step of the priority cascade. The first rule whose words
// hit wins.
type cascadeRule struct {
	words    []string
	category models.Category
	reason   string
}

var cascadeRules = []cascadeRule{
	{foodWords, models.CategoryFood, "Detected food item (%s). Mapped to \"Food\"."},
	{plantWords, models.CategoryPlants, "Detected plant/flower (%s). Mapped to \"Plants and Flowers\"."},
	{animalWords, models.CategoryAnimals, "Detected animal (%s). Mapped to \"Animals\"."},
	{landscapeWords, models.CategoryLandscapes, "Detected landscape element (%s). Mapped to \"Landscapes\"."},
	{technologyWords, models.CategoryTechnology, "Detected technology (%s) without people. Mapped to \"Technology\"."},
}

// Cascade classifies predictions by strict priority: people (business when
// office or tech items are present), then food, plants, animals, landscapes
// and technology, defaulting to Graphic Resources. The confidence is the top
// prediction's probability.
func Cascade(preds []Prediction) models.ClassificationResult {
	if len(preds) == 0 {
		return noPredictions()
	}

	words := make(map[string]bool)
	for _, p := range preds {
		for _, w := range wordSplit.Split(strings.ToLower(p.ClassName), -1) {
			if w != "" {
				words[w] = true
			}
		}
	}
	hit := func(list []string) bool {
		for _, kw := range list {
			if words[kw] {
				return true
			}
		}
		return false
	}

	top := preds[0]
	res := models.ClassificationResult{
		Confidence: models.ClampConfidence(top.Probability),
		Labels:     predictionClasses(preds),
	}

	if hit(peopleWords) {
		if hit(officeTechWords) {
			res.Category = models.CategoryBusiness
			res.Reasoning = fmt.Sprintf("Detected person (%s) with office/tech elements. Mapped to \"Business\".", top.ClassName)
		} else {
			res.Category = models.CategoryPeople
			res.Reasoning = fmt.Sprintf("Detected person/human element (%s). Mapped to \"People\".", top.ClassName)
		}
		return res
	}

	for _, rule := range cascadeRules {
		if hit(rule.words) {
			res.Category = rule.category
			res.Reasoning = fmt.Sprintf(rule.reason, top.ClassName)
			return res
		}
	}

	res.Category = models.CategoryGraphicResources
	res.Reasoning = fmt.Sprintf("No specific category matched for %q. Defaulting to \"Graphic Resources\".", top.ClassName)
	return res
}

// MapPredictions classifies predictions with the shared label mapper.
func MapPredictions(preds []Prediction) models.ClassificationResult {
	if len(preds) == 0 {
		return noPredictions()
	}
	labels := make([]models.Label, 0, len(preds))
	for _, p := range preds {
		labels = append(labels, models.Label{Text: p.ClassName, Score: models.ClampConfidence(p.Probability)})
	}
	return categorizer.MapLabels(labels)
}

func noPredictions() models.ClassificationResult {
	return models.ClassificationResult{
		Category:   models.CategoryGraphicResources,
		Confidence: 0,
		Reasoning:  NoPredictionsReason,
	}
}

func predictionClasses(preds []Prediction) []string {
	out := make([]string, 0, len(preds))
	for _, p := range preds {
		out = append(out, p.ClassName)
	}
	return out
}
