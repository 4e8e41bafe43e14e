package playbook

// #region crisis-patterns

// crisisPatterns are hopelessness / self-harm ideation phrasings. Any
// match classifies the turn CRISIS regardless of metrics.
var crisisPatterns = []string{
	"want to die",
	"kill myself",
	"end it all",
	"end my life",
	"no way out",
	"no point anymore",
	"can't go on",
	"hurt myself",
	"better off without me",
	"everyone would be better off",
	"nothing matters anymore",
	"hopeless",
}

// #endregion

// #region council-patterns

// councilPatterns are decision-fork phrasings: the user stands between
// alternatives and the stakes are decisional.
var councilPatterns = []string{
	"should i",
	"can't decide",
	"torn between",
	"which should i choose",
	"on one hand",
	"what would you do",
	"crossroads",
	"big decision",
}

// #endregion

// #region sift-patterns

// siftPatterns are fact-verification phrasings; they require the
// response to carry a verification delta.
var siftPatterns = []string{
	"is it true",
	"is that true",
	"fact check",
	"verify",
	"did that really happen",
	"what's the source",
	"where did you get",
	"prove it",
	"how do you know",
}

// #endregion

// #region shadow-patterns

// shadowPatterns are ambiguous or uncertain emotional phrasings; the
// turn needs holding rather than answers.
var shadowPatterns = []string{
	"i don't know how i feel",
	"don't know what i feel",
	"mixed feelings",
	"not sure what's wrong",
	"something is off",
	"can't put it into words",
	"strange mood",
	"empty somehow",
}

// #endregion

// #region attention-patterns

// attentionPatterns are below crisis level but still warrant a closer
// look from the quick pre-screen.
var attentionPatterns = []string{
	"worthless",
	"what's the point",
	"give up",
	"nobody cares",
	"so tired of everything",
	"alone in this",
}

// #endregion
