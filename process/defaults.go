package process

// Default hyperparameters and tuning constants of the process.
const (
	// DefaultYDeg is the spherical harmonic degree of the surface
	// expansion. Increasing it above the default is not recommended, as
	// the high-degree covariance terms become numerically unstable.
	DefaultYDeg = 15

	// DefaultR and DefaultDR parametrize the spot radius prior, degrees.
	DefaultR  = 20.0
	DefaultDR = 0.0

	// DefaultA and DefaultB are the compact latitude shape parameters.
	DefaultA = 0.40
	DefaultB = 0.27

	// DefaultC is the fractional spot contrast.
	DefaultC = 0.1

	// DefaultN is the expected spot count.
	DefaultN = 10.0

	// DefaultInclination (degrees) and DefaultPeriod (time units) apply
	// when a View does not override them.
	DefaultInclination = 60.0
	DefaultPeriod      = 1.0

	// DefaultCovPts is the phase-lag grid size for the
	// inclination-marginalized covariance.
	DefaultCovPts = 300

	// DefaultNormOrder and DefaultNormZMax control the series expansion
	// of the normalized covariance. Expansion parameters above the
	// threshold give infinite variance and a log likelihood of -Inf.
	DefaultNormOrder = 20
	DefaultNormZMax  = 0.023

	// DefaultEps is added to the diagonal of the flux covariance before
	// factorization when sampling with inclination marginalized.
	DefaultEps = 1e-8

	// DefaultEpsY stabilizes the diagonal of the coefficient covariance;
	// DefaultEpsY15 applies additionally above degree 15.
	DefaultEpsY   = 1e-12
	DefaultEpsY15 = 1e-9
)
