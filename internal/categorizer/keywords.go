package categorizer

import "fjacquet/stock-categorizer/internal/models"

// categoryKeywords is the fixed keyword table used by MapLabels, in canonical
// taxonomy order. A label matches a category when any keyword is a substring
// of the lower-cased label text.
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryAnimals, []string{"animal", "mammal", "bird", "fish", "insect", "pet", "dog", "cat", "wildlife", "zoo", "fur", "beak", "wing"}},
	{models.CategoryBuildings, []string{"building", "architecture", "house", "skyscraper", "city", "urban", "construction", "structure", "window", "door", "roof", "facade"}},
	{models.CategoryBusiness, []string{"business", "office", "work", "meeting", "computer", "laptop", "finance", "money", "chart", "graph", "corporate", "professional", "suit"}},
	{models.CategoryDrinks, []string{"drink", "beverage", "glass", "bottle", "cup", "mug", "coffee", "tea", "water", "alcohol", "wine", "beer", "cocktail", "juice"}},
	{models.CategoryEnvironment, []string{"environment", "nature", "ecology", "pollution", "recycle", "green", "earth", "planet", "climate", "global warming", "forest", "ocean"}},
	{models.CategoryStatesOfMind, []string{"emotion", "happy", "sad", "angry", "love", "fear", "surprise", "joy", "depression", "stress", "mental", "thought", "dream"}},
	{models.CategoryFood, []string{"food", "meal", "dish", "cuisine", "fruit", "vegetable", "meat", "bread", "dessert", "snack", "cooking", "kitchen", "restaurant"}},
	{models.CategoryGraphicResources, []string{"graphic", "design", "background", "texture", "pattern", "abstract", "art", "illustration", "vector", "symbol", "icon", "logo", "jewelry", "diamond", "gemstone", "luxury"}},
	{models.CategoryHobbies, []string{"hobby", "leisure", "fun", "game", "play", "toy", "music", "art", "craft", "reading", "writing", "collection", "relax"}},
	{models.CategoryIndustry, []string{"industry", "factory", "manufacturing", "machine", "tool", "worker", "engineer", "construction", "plant", "production", "technology"}},
	{models.CategoryLandscapes, []string{"landscape", "nature", "scenery", "mountain", "sky", "cloud", "river", "lake", "sea", "ocean", "beach", "forest", "tree", "grass", "field", "sunset", "sunrise"}},
	{models.CategoryLifestyle, []string{"lifestyle", "living", "home", "family", "friend", "couple", "party", "celebration", "wedding", "holiday", "vacation", "travel"}},
	{models.CategoryPeople, []string{"person", "people", "man", "woman", "child", "baby", "crowd", "face", "portrait", "human", "group", "team"}},
	{models.CategoryPlants, []string{"plant", "flower", "leaf", "garden", "flora", "botany", "bloom", "blossom", "tree", "grass", "nature"}},
	{models.CategoryCulture, []string{"culture", "religion", "tradition", "festival", "temple", "church", "mosque", "prayer", "god", "spirituality", "belief", "custom"}},
	{models.CategoryScience, []string{"science", "research", "lab", "laboratory", "microscope", "chemistry", "biology", "physics", "medicine", "health", "doctor", "hospital"}},
	{models.CategorySocialIssues, []string{"social", "issue", "poverty", "war", "protest", "politics", "government", "law", "justice", "crime", "violence", "peace"}},
	{models.CategorySports, []string{"sport", "game", "match", "player", "team", "ball", "stadium", "athlete", "exercise", "fitness", "gym", "workout", "running"}},
	{models.CategoryTechnology, []string{"technology", "tech", "computer", "phone", "mobile", "internet", "digital", "software", "hardware", "robot", "ai", "future"}},
	{models.CategoryTransport, []string{"transport", "transportation", "vehicle", "car", "bus", "train", "plane", "ship", "boat", "bicycle", "road", "traffic", "travel"}},
	{models.CategoryTravel, []string{"travel", "tourism", "tourist", "destination", "vacation", "holiday", "trip", "journey", "adventure", "explore", "landmark", "monument"}},
}

// Keywords returns a copy of the keyword list for category.
func Keywords(category models.Category) []string {
	for _, entry := range categoryKeywords {
		if entry.category == category {
			out := make([]string, len(entry.keywords))
			copy(out, entry.keywords)
			return out
		}
	}
	return nil
}
