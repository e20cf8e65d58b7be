package catalog

import "github.com/roach88/shouldi/internal/ir"

// Definition names flowing between the built-in operations.
const (
	DefPackage        = "package"
	DefPackageJSON    = "package_json"
	DefPackageVersion = "package_version"
	DefPackageURL     = "package_url"
	DefPackageSrcDir  = "package_src_dir"
)

// Built-in operation names.
const (
	OpPyPIPackageJSON    = "pypi_package_json"
	OpPyPILatestVersion  = "pypi_latest_package_version"
	OpPyPIPackageURL     = "pypi_package_url"
	OpPyPIPackageContent = "pypi_package_contents"
	OpSafetyCheck        = "safety_check"
	OpRunBandit          = "run_bandit"
)

// Builtin returns the operations used by the install command.
//
// The package_version value is a pinned requirement ("name==version"), so
// safety_check needs only one input.
func Builtin() *Catalog {
	return New(
		ir.NewOperation(OpPyPIPackageJSON,
			ir.Slot{Param: "package", Definition: DefPackage},
			ir.Slot{Param: "response_json", Definition: DefPackageJSON}),
		ir.NewOperation(OpPyPILatestVersion,
			ir.Slot{Param: "response_json", Definition: DefPackageJSON},
			ir.Slot{Param: "version", Definition: DefPackageVersion}),
		ir.NewOperation(OpPyPIPackageURL,
			ir.Slot{Param: "response_json", Definition: DefPackageJSON},
			ir.Slot{Param: "url", Definition: DefPackageURL}),
		ir.NewOperation(OpPyPIPackageContent,
			ir.Slot{Param: "url", Definition: DefPackageURL},
			ir.Slot{Param: "directory", Definition: DefPackageSrcDir}),
		ir.NewOperation(OpSafetyCheck,
			ir.Slot{Param: "version", Definition: DefPackageVersion},
			ir.Slot{Param: "issues", Definition: ir.SignalVulnerabilityCount}),
		ir.NewOperation(OpRunBandit,
			ir.Slot{Param: "pkg", Definition: DefPackageSrcDir},
			ir.Slot{Param: "report", Definition: ir.SignalStaticAnalysis}),
	)
}
