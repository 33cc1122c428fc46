package main

// seed populates the store with a small fixture repository exercising the
// filter policy: lockfiles and node_modules must contribute nothing to a
// conversion, README.md must always appear.
func seed(s *repoStore) {
	s.setFile("acme", "demo", "README.md", "# demo\n\nA fixture repository for local development.\n")
	s.setFile("acme", "demo", "go.mod", "module example.com/demo\n\ngo 1.25\n")
	s.setFile("acme", "demo", "main.go", "package main\n\nfunc main() {}\n")
	s.setFile("acme", "demo", "internal/app.go", "package internal\n\nconst Version = \"0.1.0\"\n")
	s.setFile("acme", "demo", "web/index.html", "<!doctype html>\n<title>demo</title>\n")
	s.setFile("acme", "demo", "web/app.js", "console.log(\"demo\");\n")
	s.setFile("acme", "demo", "package-lock.json", "{\"lockfileVersion\": 3}\n")
	s.setFile("acme", "demo", "node_modules/leftpad/index.js", "module.exports = s => s;\n")
	s.setFile("acme", "demo", "dist/bundle.js", "!function(){}();\n")
	s.setFile("acme", "demo", "assets/logo.png", "\x89PNG...\n")
}
