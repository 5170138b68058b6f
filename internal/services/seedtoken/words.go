package seedtoken

// alphabet is the ordered word list tokens are written in. The position of
// each word is its digit value, so the order must never change once tokens
// have been shared.
var alphabet = []string{
	"Tiny", "Open", "World", "Jazz", "Dino", "Haunted",
	"Toothbrush", "Translation", "Jank", "Pizza", "Underground", "Tax",
	"Evade", "Kevin", "Speed", "Banned", "Comic", "Large",
	"Spoon", "Excessive", "Pacifist", "Simulate", "Every", "Suggest",
	"Monkey", "Keyboard", "Kick", "Baby", "Explosive", "Butter",
	"Quantum", "Quack", "Osha", "Violate", "Votebot", "Deep",
	"Lore", "Fantasy", "But", "Why", "Nice", "Canon",
	"Game", "Poor", "Sale", "Depths", "Growth", "Cat",
	"Industrial", "Rotate", "Furry", "Tumblr", "Blood", "Fish",
	"Business", "Stick", "Bees", "Many", "Obsession", "Uncomfy",
	"Killing", "Revenge", "Joke", "Happen", "Eyebrow", "Raise",
	"Patent", "Boomer", "Plaid", "Fool", "Nothing", "Gravity",
	"Ludonarrative", "Dissonance", "Sunk", "Fallacy", "Fishing", "Wacky",
	"Graphics", "Bit", "Flamingo", "Wave", "Even", "Odd",
	"Submarine", "Bot", "Banana", "Box", "Book", "Bounce",
	"Blurple", "Live", "Vend", "Prove", "Multiple", "Savage",
	"All", "Go", "Backwards", "Moist", "Epoch", "Turtle",
	"Power", "Plan", "Progress", "Censor", "Certified", "Luton",
	"Inject", "Clown", "Whatever", "Crash", "Stain", "Ballpit",
	"Dashcon", "Bone", "App", "Teeth", "Linus", "Tech",
	"Future", "Sportsball", "Mix", "Napalm", "Lie", "Laugh",
	"Bad", "Guy", "Amogus", "Out", "Wage", "Procrastinate",
	"Diet", "Supplement", "Snail", "Tea", "Vicar", "Rock",
	"Instance", "Trade", "Shoot", "Messenger", "Tweet", "Argue",
	"So", "Brave", "Upron", "Moon", "Jetpack", "Prank",
	"Gacha", "Saint", "David", "Tennant", "Giant", "Flying",
	"Sheep", "About", "Time", "Taxman", "Cometh", "Sisyphus",
	"Change", "Artificial", "Stupid", "Least", "Worst", "Choice",
	"Barrel", "Attract", "Insect", "Disco", "Inferno", "Conduct",
	"Ritual", "Destruct", "Derby", "Already", "Been", "Here",
	"Number", "Deja", "Vu", "Chaos", "Lawn", "Mow",
	"Stole", "G", "Require", "Finance", "Letter", "Animate",
	"Texture", "Endless", "Overpressure", "Wall", "Exist", "Shame",
	"Product", "Placement", "Jackson", "Muntjac", "Nicolas", "Cage",
	"Observe", "Otter", "No", "Phase", "Those", "Plumb",
	"Lead", "Contaminate", "Chonk", "Sue", "Spinach", "Too",
	"Misuse", "Mirror", "Overthrow", "School", "Board", "Nixon",
	"Object", "Funf", "Minuten", "Toilet", "Unicorn", "Just",
	"Minute", "Moment", "Dollar", "Grimace", "Shake", "Danger",
	"Alone", "Kafka", "Futile", "Washed", "Up",
}
